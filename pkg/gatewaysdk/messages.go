package gatewaysdk

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
)

// SendMessage delivers a text message to number through the client's
// instance. A bare number is addressed at the gateway's chat domain.
func (c *Client) SendMessage(ctx context.Context, number, message string) (*SendResponse, error) {
	body, err := json.Marshal(SendMessageRequest{Number: number, Message: message})
	if err != nil {
		return nil, fmt.Errorf("failed to encode request: %w", err)
	}

	resp, err := c.doRequest(ctx, http.MethodPost, c.url("/send-message", nil, true), bytes.NewReader(body), "application/json")
	if err != nil {
		return nil, err
	}

	var out SendResponse
	if err := decodeJSON(resp, &out, http.StatusOK); err != nil {
		return nil, err
	}
	return &out, nil
}

// SendFileURL has the gateway download req.FileURL and deliver it to
// req.Number as a document.
func (c *Client) SendFileURL(ctx context.Context, req SendFileURLRequest) (*SendResponse, error) {
	body, err := json.Marshal(req)
	if err != nil {
		return nil, fmt.Errorf("failed to encode request: %w", err)
	}

	resp, err := c.doRequest(ctx, http.MethodPost, c.url("/send-file-url", nil, true), bytes.NewReader(body), "application/json")
	if err != nil {
		return nil, err
	}

	var out SendResponse
	if err := decodeJSON(resp, &out, http.StatusOK); err != nil {
		return nil, err
	}
	return &out, nil
}

// SendFile uploads file as multipart form data and delivers it to number as
// a document named filename.
func (c *Client) SendFile(ctx context.Context, number, filename string, file io.Reader, caption string) (*SendResponse, error) {
	var buf bytes.Buffer
	w := multipart.NewWriter(&buf)

	if err := w.WriteField("number", number); err != nil {
		return nil, fmt.Errorf("failed to build form: %w", err)
	}
	if caption != "" {
		if err := w.WriteField("caption", caption); err != nil {
			return nil, fmt.Errorf("failed to build form: %w", err)
		}
	}

	part, err := w.CreateFormFile("file", filename)
	if err != nil {
		return nil, fmt.Errorf("failed to build form: %w", err)
	}
	if _, err := io.Copy(part, file); err != nil {
		return nil, fmt.Errorf("failed to read file: %w", err)
	}
	if err := w.Close(); err != nil {
		return nil, fmt.Errorf("failed to finish form: %w", err)
	}

	resp, err := c.doRequest(ctx, http.MethodPost, c.url("/send-file", nil, true), &buf, w.FormDataContentType())
	if err != nil {
		return nil, err
	}

	var out SendResponse
	if err := decodeJSON(resp, &out, http.StatusOK); err != nil {
		return nil, err
	}
	return &out, nil
}
