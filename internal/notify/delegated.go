package notify

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	domain "github.com/Jaysins/yoghurt-backend/internal/entity"
)

const delegatedTimeout = 10 * time.Second

// itemData and orderData form the transport-neutral snapshot shipped to the
// delegated backend. Attachment bytes travel base64-encoded inline.
type itemData struct {
	Name     string `json:"name"`
	Amount   string `json:"amount"`
	Quantity int    `json:"quantity"`
	Total    string `json:"total"`
}

type orderData struct {
	ID             string     `json:"id"`
	Name           string     `json:"name"`
	Email          string     `json:"email"`
	PhoneNumber    string     `json:"phone_number"`
	Street         string     `json:"street"`
	City           string     `json:"city"`
	State          string     `json:"state"`
	Country        string     `json:"country"`
	ReferenceCode  string     `json:"reference_code"`
	PaymentCode    string     `json:"payment_code"`
	Items          []itemData `json:"items"`
	Total          string     `json:"total"`
	Attachment     string     `json:"attachment,omitempty"`
	AttachmentName string     `json:"attachment_name,omitempty"`
	CreatedAt      string     `json:"created_at"`
}

type sendOrderEmailRequest struct {
	OrderData    orderData `json:"order_data"`
	SendCustomer bool      `json:"send_customer"`
	SendAdmin    bool      `json:"send_admin"`
}

type SendOrderEmailResponse struct {
	EmailsSent struct {
		Customer bool `json:"customer"`
		Admin    bool `json:"admin"`
	} `json:"emails_sent"`
}

// DelegatedClient talks to the delegated notification backend. One request
// carries both send intents; the backend answers with independent
// per-recipient outcomes (207 marks partial success, 2xx full success).
type DelegatedClient struct {
	http *http.Client
}

func NewDelegatedClient() *DelegatedClient {
	return &DelegatedClient{http: &http.Client{Timeout: delegatedTimeout}}
}

func (c *DelegatedClient) SendOrderEmail(ctx context.Context, baseURL string, snap domain.Snapshot, proof []byte) (SendOrderEmailResponse, error) {
	items := make([]itemData, 0, len(snap.Items))
	for _, it := range snap.Items {
		items = append(items, itemData{
			Name:     it.Name,
			Amount:   it.Amount.StringFixed(2),
			Quantity: it.Quantity,
			Total:    it.Total().StringFixed(2),
		})
	}
	payload := sendOrderEmailRequest{
		OrderData: orderData{
			ID:            snap.ID,
			Name:          snap.Name,
			Email:         snap.Email,
			PhoneNumber:   snap.PhoneNumber,
			Street:        snap.Street,
			City:          snap.City,
			State:         snap.State,
			Country:       snap.Country,
			ReferenceCode: snap.ReferenceCode,
			PaymentCode:   snap.PaymentCode,
			Items:         items,
			Total:         snap.Total().StringFixed(2),
			CreatedAt:     snap.CreatedAt.Format(time.RFC3339),
		},
		SendCustomer: true,
		SendAdmin:    true,
	}
	if len(proof) > 0 {
		payload.OrderData.Attachment = base64.StdEncoding.EncodeToString(proof)
		payload.OrderData.AttachmentName = snap.ProofOfPayment
	}

	body, err := json.Marshal(payload)
	if err != nil {
		return SendOrderEmailResponse{}, fmt.Errorf("marshal payload: %w", err)
	}

	ctx, cancel := context.WithTimeout(ctx, delegatedTimeout)
	defer cancel()

	url := strings.TrimRight(baseURL, "/") + "/send-order-email"
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		return SendOrderEmailResponse{}, fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		return SendOrderEmailResponse{}, fmt.Errorf("send-order-email: %w", err)
	}
	defer resp.Body.Close()

	// 200 = all sent, 207 = some sent; both carry per-recipient booleans.
	if resp.StatusCode != http.StatusOK && resp.StatusCode != http.StatusMultiStatus {
		return SendOrderEmailResponse{}, fmt.Errorf("send-order-email: unexpected status %d", resp.StatusCode)
	}

	var out SendOrderEmailResponse
	if err := json.NewDecoder(io.LimitReader(resp.Body, 1<<20)).Decode(&out); err != nil {
		return SendOrderEmailResponse{}, fmt.Errorf("decode response: %w", err)
	}
	return out, nil
}
