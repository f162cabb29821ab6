package services

import (
	"context"
	"errors"
	"fmt"
	"log"
	"regexp"
	"strings"
	"time"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"dokan_app_echo/internal/models"
)

// ErrUnrecognizedSMS is returned for inbound messages that match no known
// wallet format. They are logged and dropped, never stored.
var ErrUnrecognizedSMS = errors.New("unrecognized payment sms format")

// Wallet confirmation formats. Each provider sends a fixed template, so a
// small set of anchored expressions is enough.
var (
	bkashTrxRe  = regexp.MustCompile(`TrxID\s+([A-Z0-9]{8,12})`)
	bkashAmtRe  = regexp.MustCompile(`received Tk\s*([0-9,]+(?:\.[0-9]{1,2})?)`)
	bkashFromRe = regexp.MustCompile(`from\s+(01[0-9]{9})`)

	nagadTrxRe  = regexp.MustCompile(`TxnID:\s*([A-Z0-9]{6,14})`)
	nagadAmtRe  = regexp.MustCompile(`Amount:\s*Tk\s*([0-9,]+(?:\.[0-9]{1,2})?)`)
	nagadFromRe = regexp.MustCompile(`Sender:\s*(01[0-9]{9})`)

	rocketTrxRe = regexp.MustCompile(`TxnId\s*:?\s*([A-Z0-9]{6,14})`)
	rocketAmtRe = regexp.MustCompile(`Tk\s*([0-9,]+(?:\.[0-9]{1,2})?)\s+received`)
)

// ParsedSMS is the normalized form of one wallet confirmation message
type ParsedSMS struct {
	Gateway       models.GatewayName
	TransactionID string
	Amount        decimal.Decimal
	SenderPhone   string
}

// SMSService stores inbound wallet confirmation messages and answers the
// checkout's "does this transaction id exist" gate against them.
type SMSService struct {
	db *gorm.DB
}

func NewSMSService(db *gorm.DB) *SMSService {
	return &SMSService{db: db}
}

// ParseSMS extracts the gateway, transaction id, amount and sender from a raw
// wallet message. The wallet is detected from the message body rather than the
// sending number, since short codes differ per operator.
func ParseSMS(body string) (*ParsedSMS, error) {
	switch {
	case bkashTrxRe.MatchString(body):
		return buildParsed(models.GatewayBkash, body, bkashTrxRe, bkashAmtRe, bkashFromRe)
	case nagadTrxRe.MatchString(body):
		return buildParsed(models.GatewayNagad, body, nagadTrxRe, nagadAmtRe, nagadFromRe)
	case rocketTrxRe.MatchString(body):
		return buildParsed(models.GatewayRocket, body, rocketTrxRe, rocketAmtRe, nil)
	default:
		return nil, ErrUnrecognizedSMS
	}
}

func buildParsed(gateway models.GatewayName, body string, trxRe, amtRe, fromRe *regexp.Regexp) (*ParsedSMS, error) {
	parsed := &ParsedSMS{Gateway: gateway}

	m := trxRe.FindStringSubmatch(body)
	if m == nil {
		return nil, ErrUnrecognizedSMS
	}
	parsed.TransactionID = m[1]

	if m := amtRe.FindStringSubmatch(body); m != nil {
		amount, err := decimal.NewFromString(strings.ReplaceAll(m[1], ",", ""))
		if err != nil {
			return nil, fmt.Errorf("failed to parse amount %q: %w", m[1], err)
		}
		parsed.Amount = amount
	}

	if fromRe != nil {
		if m := fromRe.FindStringSubmatch(body); m != nil {
			parsed.SenderPhone = m[1]
		}
	}

	return parsed, nil
}

// Ingest parses and stores one forwarded wallet message. Duplicate forwards
// of the same transaction id are acknowledged without a second row.
func (s *SMSService) Ingest(ctx context.Context, sender, body string) (*models.SMSTransaction, error) {
	parsed, err := ParseSMS(body)
	if err != nil {
		return nil, err
	}

	senderNumber := parsed.SenderPhone
	if senderNumber == "" {
		senderNumber = sender
	}

	record := models.SMSTransaction{
		Gateway:       parsed.Gateway,
		TransactionID: parsed.TransactionID,
		Amount:        parsed.Amount,
		Sender:        senderNumber,
		RawMessage:    body,
		ReceivedAt:    time.Now(),
	}

	err = s.db.WithContext(ctx).Create(&record).Error
	if err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			log.Printf("Duplicate SMS forward for %s, keeping the original", parsed.TransactionID)
			var existing models.SMSTransaction
			if err := s.db.WithContext(ctx).Where("transaction_id = ?", parsed.TransactionID).First(&existing).Error; err != nil {
				return nil, err
			}
			return &existing, nil
		}
		return nil, fmt.Errorf("failed to store sms transaction: %w", err)
	}
	return &record, nil
}

// CheckTransaction reports whether a transaction id was seen in an inbound
// wallet message. This is the cheap pre-order gate; amount matching happens
// during review.
func (s *SMSService) CheckTransaction(ctx context.Context, transactionID string) (bool, error) {
	transactionID = strings.TrimSpace(transactionID)
	if transactionID == "" {
		return false, nil
	}

	var count int64
	err := s.db.WithContext(ctx).Model(&models.SMSTransaction{}).
		Where("transaction_id = ?", transactionID).
		Count(&count).Error
	if err != nil {
		return false, fmt.Errorf("failed to look up sms transaction: %w", err)
	}
	return count > 0, nil
}

// FindByTransactionID fetches the stored message for admin inspection
func (s *SMSService) FindByTransactionID(ctx context.Context, transactionID string) (*models.SMSTransaction, error) {
	var record models.SMSTransaction
	err := s.db.WithContext(ctx).Where("transaction_id = ?", transactionID).First(&record).Error
	if err != nil {
		return nil, err
	}
	return &record, nil
}
