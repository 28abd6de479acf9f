package whatsapp_client

import (
	"context"
	"fmt"
	"strings"
	"sync"

	domainErrors "go-wa-dispatch/src/domain/errors"
	"go-wa-dispatch/src/domain/transport"
	logger "go-wa-dispatch/src/infrastructure/logger"

	_ "github.com/lib/pq"
	_ "github.com/mattn/go-sqlite3"
	"go.mau.fi/whatsmeow"
	"go.mau.fi/whatsmeow/proto/waE2E"
	"go.mau.fi/whatsmeow/store/sqlstore"
	"go.mau.fi/whatsmeow/types"
	"go.uber.org/zap"
	"google.golang.org/protobuf/proto"
)

const (
	DialectSQLite   = "sqlite3"
	DialectPostgres = "postgres"
)

// Config selects the device store and the QR output.
type Config struct {
	StoreDialect string
	StoreDSN     string
	LogLevel     string
	QRPNGPath    string
}

// waClient is the part of *whatsmeow.Client the transport uses.
type waClient interface {
	Connect() error
	Disconnect()
	IsConnected() bool
	GetQRChannel(ctx context.Context) (<-chan whatsmeow.QRChannelItem, error)
	IsOnWhatsApp(ctx context.Context, phones []string) ([]types.IsOnWhatsAppResponse, error)
	SendMessage(ctx context.Context, to types.JID, message *waE2E.Message, extra ...whatsmeow.SendRequestExtra) (whatsmeow.SendResponse, error)
	Download(ctx context.Context, msg whatsmeow.DownloadableMessage) ([]byte, error)
}

// Client is the WhatsApp transport. It sends text messages and forwards
// lifecycle and inbound events to a transport.Listener.
type Client struct {
	cfg      Config
	wa       waClient
	listener transport.Listener
	Logger   *logger.Logger
	qr       *qrState
	paired   bool

	mu     sync.Mutex
	closed bool
}

// NewWhatsAppClient opens the device store and prepares a client for the
// first stored device, creating a new one when the store is empty.
func NewWhatsAppClient(ctx context.Context, cfg Config, loggerInstance *logger.Logger) (*Client, error) {
	dialect := strings.ToLower(cfg.StoreDialect)
	if dialect == "" {
		dialect = DialectSQLite
	}
	if dialect != DialectSQLite && dialect != DialectPostgres {
		return nil, fmt.Errorf("unsupported WA_STORE_DIALECT %q", cfg.StoreDialect)
	}
	if cfg.StoreDSN == "" {
		cfg.StoreDSN = "file:whatsapp.db?_foreign_keys=on"
	}

	container, err := sqlstore.New(ctx, dialect, cfg.StoreDSN, logger.NewWhatsmeowLogger(loggerInstance, "Database", cfg.LogLevel))
	if err != nil {
		loggerInstance.Error("Error opening WhatsApp device store", zap.String("dialect", dialect), zap.Error(err))
		return nil, err
	}
	device, err := container.GetFirstDevice(ctx)
	if err != nil {
		loggerInstance.Error("Error loading WhatsApp device", zap.Error(err))
		return nil, err
	}

	wa := whatsmeow.NewClient(device, logger.NewWhatsmeowLogger(loggerInstance, "Client", cfg.LogLevel))
	// Disconnects are process-fatal and left to the supervisor.
	wa.EnableAutoReconnect = false

	c := &Client{
		cfg:    cfg,
		wa:     wa,
		Logger: loggerInstance,
		qr:     newQRState(cfg.QRPNGPath),
		paired: device.ID != nil,
	}
	wa.AddEventHandler(c.handleEvent)
	return c, nil
}

// SetListener must be called before Connect.
func (c *Client) SetListener(listener transport.Listener) {
	c.listener = listener
}

// Connect opens the session. Unpaired devices get a QR channel whose codes
// are reported through OnQR until pairing succeeds.
func (c *Client) Connect(ctx context.Context) error {
	if c.paired {
		c.Logger.Info("Connecting to WhatsApp with stored session")
		return c.wa.Connect()
	}

	qrChan, err := c.wa.GetQRChannel(ctx)
	if err != nil {
		c.Logger.Error("Error requesting WhatsApp QR channel", zap.Error(err))
		return err
	}
	if err := c.wa.Connect(); err != nil {
		c.Logger.Error("Error connecting to WhatsApp", zap.Error(err))
		return err
	}
	go c.watchQR(qrChan)
	return nil
}

func (c *Client) watchQR(qrChan <-chan whatsmeow.QRChannelItem) {
	for item := range qrChan {
		switch item.Event {
		case whatsmeow.QRChannelEventCode:
			c.onQR(item.Code)
		case whatsmeow.QRChannelSuccess.Event:
			c.qr.clear()
			c.Logger.Info("WhatsApp pairing succeeded")
		default:
			c.Logger.Warn("WhatsApp pairing event", zap.String("event", item.Event), zap.Error(item.Error))
			if c.listener != nil && item.Event != whatsmeow.QRChannelEventError {
				c.listener.OnAuthFailure("pairing " + item.Event)
			}
		}
	}
}

func (c *Client) onQR(code string) {
	if err := c.qr.update(code); err != nil {
		c.Logger.Warn("Error rendering WhatsApp QR code", zap.Error(err))
	}
	c.Logger.Info("WhatsApp QR code received, scan it to pair")
	if c.listener != nil {
		c.listener.OnQR(code)
	}
}

// LatestQR returns the PNG of the pending pairing code.
func (c *Client) LatestQR() ([]byte, bool) {
	return c.qr.latest()
}

// Send delivers text to a "<digits>@c.us" address. Invalid addresses and
// numbers without a WhatsApp account fail permanently.
func (c *Client) Send(ctx context.Context, address string, text string) error {
	phone, err := addressToPhone(address)
	if err != nil {
		return domainErrors.NewPermanent(err)
	}
	if !c.wa.IsConnected() {
		return domainErrors.NewTransient(whatsmeow.ErrNotConnected)
	}

	resp, err := c.wa.IsOnWhatsApp(ctx, []string{"+" + phone})
	if err != nil {
		return classifySendError(err)
	}
	if len(resp) == 0 || !resp[0].IsIn {
		return domainErrors.NewPermanent(fmt.Errorf("%s is not on WhatsApp", phone))
	}

	msg := &waE2E.Message{Conversation: proto.String(text)}
	sent, err := c.wa.SendMessage(ctx, resp[0].JID, msg)
	if err != nil {
		c.Logger.Warn("WhatsApp send failed", zap.String("to", address), zap.Error(err))
		return classifySendError(err)
	}
	c.Logger.Debug("WhatsApp message sent", zap.String("to", address), zap.String("messageId", sent.ID))
	return nil
}

// Disconnect closes the session. Calling it more than once is a no-op.
func (c *Client) Disconnect() {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed {
		return
	}
	c.closed = true
	c.wa.Disconnect()
	c.Logger.Info("WhatsApp client disconnected")
}

func (c *Client) isClosed() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.closed
}
