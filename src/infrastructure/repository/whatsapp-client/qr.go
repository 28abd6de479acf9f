package whatsapp_client

import (
	"fmt"
	"os"
	"sync"

	"github.com/skip2/go-qrcode"
)

const qrPNGSize = 256

// qrState keeps the PNG of the latest pairing code and mirrors it to disk
// when a path is configured.
type qrState struct {
	path string

	mu  sync.RWMutex
	png []byte
}

func newQRState(path string) *qrState {
	return &qrState{path: path}
}

func (q *qrState) update(code string) error {
	qr, err := qrcode.New(code, qrcode.Medium)
	if err != nil {
		return err
	}
	png, err := qr.PNG(qrPNGSize)
	if err != nil {
		return err
	}

	q.mu.Lock()
	q.png = png
	q.mu.Unlock()

	fmt.Println(qr.ToSmallString(false))
	if q.path != "" {
		if err := os.WriteFile(q.path, png, 0o600); err != nil {
			return fmt.Errorf("writing QR png: %w", err)
		}
	}
	return nil
}

func (q *qrState) clear() {
	q.mu.Lock()
	q.png = nil
	q.mu.Unlock()
	if q.path != "" {
		_ = os.Remove(q.path)
	}
}

func (q *qrState) latest() ([]byte, bool) {
	q.mu.RLock()
	defer q.mu.RUnlock()
	if len(q.png) == 0 {
		return nil, false
	}
	return q.png, true
}
