package store

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"relaybot/internal/config"
	"relaybot/internal/registry"
	"relaybot/pkg/logx"
)

// Bin stores the document in a remote JSON bin (jsonbin.io compatible).
// Reads hit GET {url}/latest which wraps the document in {"record": ...};
// writes PUT the bare document back. The master key rides in X-Master-Key.
type Bin struct {
	url    string
	key    string
	client *http.Client
	log    logx.Logger
}

func NewBin(cfg config.BinConfig, log logx.Logger) (*Bin, error) {
	url := strings.TrimRight(strings.TrimSpace(cfg.URL), "/")
	if url == "" {
		return nil, errors.New("store: bin driver requires storage.bin.url")
	}
	if strings.TrimSpace(cfg.MasterKey) == "" {
		return nil, errors.New("store: bin driver requires storage.bin.master_key")
	}
	return &Bin{
		url:    url,
		key:    cfg.MasterKey,
		client: &http.Client{Timeout: 15 * time.Second},
		log:    log,
	}, nil
}

func (b *Bin) Load(ctx context.Context) (registry.Document, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, b.url+"/latest", nil)
	if err != nil {
		return registry.Document{}, err
	}
	req.Header.Set("X-Master-Key", b.key)

	resp, err := b.client.Do(req)
	if err != nil {
		return registry.Document{}, fmt.Errorf("%w: %v", ErrUnavailable, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusNotFound {
		// Empty bin; start from a fresh document and materialize it remotely.
		doc := registry.NewDocument()
		if serr := b.Save(ctx, doc); serr != nil {
			return registry.Document{}, serr
		}
		b.log.Info("seeded empty remote registry", logx.String("url", b.url))
		return doc, nil
	}
	if resp.StatusCode != http.StatusOK {
		return registry.Document{}, fmt.Errorf("%w: GET %s: status %d", ErrUnavailable, b.url, resp.StatusCode)
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, 8<<20))
	if err != nil {
		return registry.Document{}, fmt.Errorf("%w: %v", ErrUnavailable, err)
	}

	var wrapper struct {
		Record registry.Document `json:"record"`
	}
	if err := json.Unmarshal(body, &wrapper); err != nil {
		return registry.Document{}, fmt.Errorf("store: decode bin response: %w", err)
	}
	doc := wrapper.Record
	if doc.Users == nil {
		doc.Users = map[string]registry.Operator{}
	}
	return doc, nil
}

func (b *Bin) Save(ctx context.Context, doc registry.Document) error {
	payload, err := json.Marshal(doc)
	if err != nil {
		return fmt.Errorf("store: encode registry: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPut, b.url, bytes.NewReader(payload))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("X-Master-Key", b.key)

	resp, err := b.client.Do(req)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrUnavailable, err)
	}
	defer resp.Body.Close()
	_, _ = io.Copy(io.Discard, resp.Body)

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("%w: PUT %s: status %d", ErrUnavailable, b.url, resp.StatusCode)
	}
	return nil
}

func (b *Bin) Close() error {
	b.client.CloseIdleConnections()
	return nil
}
