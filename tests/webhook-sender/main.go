package main

import (
	"bytes"
	"crypto/hmac"
	"crypto/sha256"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"log"
	"math/rand"
	"net/http"
	"os"
	"time"
)

const (
	defaultURL    = "http://localhost:9000/webhooks/shiprocket"
	defaultSecret = "dev-secret"
)

type address struct {
	FirstName string `json:"first_name"`
	LastName  string `json:"last_name"`
	Phone     string `json:"phone"`
	Address1  string `json:"address1"`
	City      string `json:"city"`
	State     string `json:"state"`
	Country   string `json:"country"`
	Pincode   string `json:"pincode"`
}

type cartItem struct {
	VariantID string `json:"variant_id"`
	Quantity  int    `json:"quantity"`
}

type payload struct {
	OrderID            string   `json:"order_id"`
	CartID             string   `json:"cart_id"`
	Status             string   `json:"status"`
	Phone              string   `json:"phone"`
	Email              string   `json:"email"`
	PaymentType        string   `json:"payment_type"`
	PaymentStatus      string   `json:"payment_status"`
	TotalAmountPayable float64  `json:"total_amount_payable"`
	SubtotalPrice      float64  `json:"subtotal_price"`
	ShippingCharges    float64  `json:"shipping_charges"`
	ShippingAddress    address  `json:"shipping_address"`
	CartData           struct {
		Items []cartItem `json:"items"`
	} `json:"cart_data"`
}

func randomString(n int) string {
	letters := []rune("abcdefghijklmnopqrstuvwxyz0123456789")
	b := make([]rune, n)
	for i := range b {
		b[i] = letters[rand.Intn(len(letters))]
	}
	return string(b)
}

func generatePayload() payload {
	p := payload{
		OrderID:       "SR" + randomString(10),
		CartID:        "cart_" + randomString(8),
		Status:        "SUCCESS",
		Phone:         fmt.Sprintf("+91%010d", rand.Intn(999999999)),
		Email:         fmt.Sprintf("user%d@example.com", rand.Intn(1000)),
		PaymentType:   "PREPAID",
		PaymentStatus: "PAID",
		ShippingAddress: address{
			FirstName: "Asha",
			LastName:  "Rao",
			Address1:  fmt.Sprintf("%d MG Road", rand.Intn(200)),
			City:      "Bengaluru",
			State:     "Karnataka",
			Country:   "India",
			Pincode:   fmt.Sprintf("%06d", 560000+rand.Intn(100)),
		},
	}
	for range rand.Intn(3) + 1 {
		item := cartItem{
			VariantID: fmt.Sprintf("%d", 1000+rand.Intn(5)),
			Quantity:  rand.Intn(3) + 1,
		}
		p.CartData.Items = append(p.CartData.Items, item)
		p.SubtotalPrice += float64(item.Quantity) * 499
	}
	p.ShippingCharges = 49
	p.TotalAmountPayable = p.SubtotalPrice + p.ShippingCharges
	return p
}

func sign(secret string, body []byte) string {
	mac := hmac.New(sha256.New, []byte(secret))
	mac.Write(body)
	return base64.StdEncoding.EncodeToString(mac.Sum(nil))
}

func main() {
	url := defaultURL
	if v := os.Getenv("WEBHOOK_URL"); v != "" {
		url = v
	}
	secret := defaultSecret
	if v := os.Getenv("SHIPROCKET_SECRET"); v != "" {
		secret = v
	}

	ticker := time.NewTicker(2 * time.Second)
	for range ticker.C {
		p := generatePayload()
		body, _ := json.Marshal(p)

		req, err := http.NewRequest(http.MethodPost, url, bytes.NewReader(body))
		if err != nil {
			log.Fatal(err)
		}
		req.Header.Set("Content-Type", "application/json")
		req.Header.Set("X-Api-HMAC-SHA256", sign(secret, body))

		resp, err := http.DefaultClient.Do(req)
		if err != nil {
			log.Println("request failed:", err)
			continue
		}
		resp.Body.Close()
		log.Println("POST", p.OrderID, "->", resp.Status)
	}
}
