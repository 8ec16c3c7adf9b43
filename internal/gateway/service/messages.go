package service

import (
	"context"
	"errors"
	"fmt"
	"io"
	"mime/multipart"
	"strings"
	"time"

	"github.com/aussiebroadwan/chatbridge/internal/gateway/domain"
	"github.com/aussiebroadwan/chatbridge/internal/gateway/media"
	"github.com/aussiebroadwan/chatbridge/internal/gateway/protocol"
	"github.com/aussiebroadwan/chatbridge/internal/gateway/store"
)

var (
	ErrNotConnected   = errors.New("instance not connected")
	ErrUpstream       = errors.New("upstream send failed")
	ErrTransientIO    = errors.New("file retrieval failed")
	ErrTerminalLogout = errors.New("instance has been logged out")
)

// MessageService sends text and documents through a connected instance. It
// never mutates lifecycle state: a failed send is reported to the caller and
// the connection is left for the event pump to judge.
type MessageService struct {
	Registry     *Registry
	Store        store.Store
	ChatDomain   string
	MaxFileBytes int64
	FetchTimeout time.Duration
}

// NormalizeAddress turns a bare number into a protocol address by appending
// the configured chat domain. Inputs that already carry an "@" are passed
// through untouched, so fully-qualified addresses (including group addresses
// on other suffixes) keep working.
func (s *MessageService) NormalizeAddress(raw string) (string, error) {
	addr := strings.TrimSpace(raw)
	if addr == "" {
		return "", fmt.Errorf("%w: number is required", ErrValidation)
	}
	if !strings.Contains(addr, "@") {
		addr += "@" + s.ChatDomain
	}
	return addr, nil
}

// SendText delivers a plain text message from instance key to the given
// number.
func (s *MessageService) SendText(ctx context.Context, key, number, text string) error {
	addr, err := s.NormalizeAddress(number)
	if err != nil {
		return err
	}
	if strings.TrimSpace(text) == "" {
		return fmt.Errorf("%w: message is required", ErrValidation)
	}

	client, err := s.connection(key)
	if err != nil {
		return err
	}

	if err := client.Send(ctx, addr, protocol.Message{Text: text}); err != nil {
		return s.classifySendErr(ctx, key, err)
	}
	return nil
}

// SendFileFromURL downloads fileURL to a bounded temp file and delivers it
// as a document. The temp file is removed before returning, success or not.
// fileName overrides the name shown to the recipient; when empty it is
// derived from the URL path, then from the sniffed content type.
func (s *MessageService) SendFileFromURL(ctx context.Context, key, number, fileURL, caption, fileName string) error {
	addr, err := s.NormalizeAddress(number)
	if err != nil {
		return err
	}
	if strings.TrimSpace(fileURL) == "" {
		return fmt.Errorf("%w: fileUrl is required", ErrValidation)
	}

	client, err := s.connection(key)
	if err != nil {
		return err
	}

	fetchCtx := ctx
	if s.FetchTimeout > 0 {
		var cancel context.CancelFunc
		fetchCtx, cancel = context.WithTimeout(ctx, s.FetchTimeout)
		defer cancel()
	}

	f, err := media.Fetch(fetchCtx, fileURL, s.MaxFileBytes)
	if err != nil {
		if errors.Is(err, media.ErrTooLarge) {
			return err
		}
		return fmt.Errorf("%w: %v", ErrTransientIO, err)
	}
	defer f.Cleanup()

	data, err := f.Bytes()
	if err != nil {
		return fmt.Errorf("%w: %v", ErrTransientIO, err)
	}

	name := strings.TrimSpace(fileName)
	if name == "" {
		name = media.FilenameFromURL(fileURL)
	}
	if name == "" {
		name = "file" + media.ExtensionFor(f.Head)
	}

	doc := &protocol.Document{
		Filename: name,
		MIMEType: f.MIME,
		Data:     data,
		Caption:  caption,
	}
	if err := client.Send(ctx, addr, protocol.Message{Document: doc}); err != nil {
		return s.classifySendErr(ctx, key, err)
	}
	return nil
}

// SendUploadedFile delivers a multipart upload as a document. The upload is
// read through a size cap; net/http owns the spooled form data and cleans it
// up with the request.
func (s *MessageService) SendUploadedFile(ctx context.Context, key, number string, file multipart.File, header *multipart.FileHeader, caption string) error {
	addr, err := s.NormalizeAddress(number)
	if err != nil {
		return err
	}
	if header == nil {
		return fmt.Errorf("%w: file is required", ErrValidation)
	}

	client, err := s.connection(key)
	if err != nil {
		return err
	}

	data, err := io.ReadAll(io.LimitReader(file, s.MaxFileBytes+1))
	if err != nil {
		return fmt.Errorf("%w: %v", ErrTransientIO, err)
	}
	if int64(len(data)) > s.MaxFileBytes {
		return fmt.Errorf("%w: upload exceeds %d bytes", media.ErrTooLarge, s.MaxFileBytes)
	}

	head := data
	if len(head) > 512 {
		head = head[:512]
	}

	mimeType := header.Header.Get("Content-Type")
	if mimeType == "" || mimeType == "application/octet-stream" {
		mimeType = media.DetectMIME(head)
	}

	name := strings.TrimSpace(header.Filename)
	if name == "" {
		name = "file" + media.ExtensionFor(head)
	}

	doc := &protocol.Document{
		Filename: name,
		MIMEType: mimeType,
		Data:     data,
		Caption:  caption,
	}
	if err := client.Send(ctx, addr, protocol.Message{Document: doc}); err != nil {
		return s.classifySendErr(ctx, key, err)
	}
	return nil
}

// connection returns the live client for key, requiring a fully connected
// session. Initializing and pairing states count as not connected.
func (s *MessageService) connection(key string) (protocol.Client, error) {
	if strings.TrimSpace(key) == "" {
		return nil, fmt.Errorf("%w: instanceKey is required", ErrValidation)
	}
	client, state, ok := s.Registry.Get(key)
	if !ok || state != domain.StateConnected {
		return nil, ErrNotConnected
	}
	return client, nil
}

// classifySendErr separates a terminal logout racing the send from an
// ordinary upstream failure. Only a logout deletes the store record, so a
// missing record after a failed send means the instance is gone for good.
func (s *MessageService) classifySendErr(ctx context.Context, key string, err error) error {
	if _, serr := s.Store.Instances().GetInstance(ctx, key); errors.Is(serr, store.ErrNotFound) {
		return fmt.Errorf("%w: %v", ErrTerminalLogout, err)
	}
	return fmt.Errorf("%w: %v", ErrUpstream, err)
}
