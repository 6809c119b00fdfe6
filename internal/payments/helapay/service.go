package helapay

import (
	"context"
	"encoding/json"
	"fmt"
	"net/url"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/malpra/marketplace-backend/internal/orders"
	"github.com/malpra/marketplace-backend/pkg/config"
	"github.com/malpra/marketplace-backend/pkg/enums"
	pkgerrors "github.com/malpra/marketplace-backend/pkg/errors"
	"github.com/malpra/marketplace-backend/pkg/logger"
)

type txRunner interface {
	WithTx(ctx context.Context, fn func(tx *gorm.DB) error) error
}

// CheckoutSession is the redirect payload the client posts to the gateway.
type CheckoutSession struct {
	CheckoutURL string            `json:"checkout_url"`
	Fields      map[string]string `json:"fields"`
}

// NotifyResult summarizes what a gateway notification did.
type NotifyResult struct {
	OrderID  uuid.UUID           `json:"order_id"`
	Status   enums.PaymentStatus `json:"status"`
	Replayed bool                `json:"replayed"`
}

// Service drives the hosted-checkout flow against HelaPay.
type Service interface {
	InitCheckout(ctx context.Context, buyerID uuid.UUID, role enums.Role, orderID uuid.UUID) (*CheckoutSession, error)
	HandleNotify(ctx context.Context, params url.Values) (*NotifyResult, error)
}

type service struct {
	tx         txRunner
	ordersRepo orders.Repository
	cfg        config.HelaPayConfig
	logg       *logger.Logger
	now        func() time.Time
}

// NewService builds the HelaPay payments service.
func NewService(tx txRunner, ordersRepo orders.Repository, cfg config.HelaPayConfig, logg *logger.Logger) (Service, error) {
	if tx == nil {
		return nil, fmt.Errorf("tx runner required")
	}
	if ordersRepo == nil {
		return nil, fmt.Errorf("orders repository required")
	}
	if logg == nil {
		return nil, fmt.Errorf("logger required")
	}
	return &service{
		tx:         tx,
		ordersRepo: ordersRepo,
		cfg:        cfg,
		logg:       logg,
		now:        time.Now,
	}, nil
}

// InitCheckout builds the signed redirect payload for an order awaiting
// gateway payment. The order must belong to the caller unless the caller is
// an admin. Calling it again for the same order returns a fresh payload as
// long as the payment is still INITIATED.
func (s *service) InitCheckout(ctx context.Context, buyerID uuid.UUID, role enums.Role, orderID uuid.UUID) (*CheckoutSession, error) {
	if buyerID == uuid.Nil || orderID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "buyer id and order id required")
	}
	if s.cfg.MerchantID() == "" || s.cfg.Secret() == "" || s.cfg.CheckoutURL() == "" {
		return nil, pkgerrors.New(pkgerrors.CodeMisconfigured, "helapay credentials missing")
	}

	order, err := s.ordersRepo.FindOrderByID(ctx, orderID)
	if err != nil {
		return nil, err
	}
	if order.BuyerID != buyerID && role != enums.RoleAdmin {
		return nil, pkgerrors.New(pkgerrors.CodeNotFound, "order not found")
	}
	if order.PaymentMethod != enums.PaymentMethodHelaPay {
		return nil, pkgerrors.New(pkgerrors.CodeStateConflict, "order is not a gateway order")
	}

	payment, err := s.ordersRepo.FindPaymentByOrder(ctx, orderID)
	if err != nil {
		return nil, err
	}
	if payment.Status == enums.PaymentStatusPaid {
		return nil, pkgerrors.New(pkgerrors.CodeStateConflict, "order already paid")
	}
	if payment.Status == enums.PaymentStatusFailed {
		// A failed attempt may be retried; the notify handler owns the
		// terminal transition.
		if err := s.ordersRepo.UpdatePayment(ctx, orderID, map[string]any{"status": enums.PaymentStatusInitiated}); err != nil {
			return nil, err
		}
	}

	fields := map[string]string{
		"merchant_id": s.cfg.MerchantID(),
		"order_id":    order.ID.String(),
		"amount":      FormatAmount(order.TotalCents),
		"currency":    s.cfg.Currency,
		"return_url":  s.cfg.ReturnURL,
		"cancel_url":  s.cfg.CancelURL,
		"notify_url":  s.cfg.NotifyURL,
	}
	if addr := order.ShippingAddress; addr != nil {
		fields["customer_name"] = addr.Name
		fields["customer_phone"] = addr.Phone
		if addr.Email != "" {
			fields["customer_email"] = addr.Email
		}
		fields["customer_address"] = addr.Line1
		fields["customer_city"] = addr.City
		fields["customer_country"] = addr.Country
	}
	fields["description"] = fmt.Sprintf("Order %s", order.ID)
	fields[fieldSignature] = Sign(fields, s.cfg.Secret())

	return &CheckoutSession{
		CheckoutURL: s.cfg.CheckoutURL(),
		Fields:      fields,
	}, nil
}

// HandleNotify processes the gateway's server-to-server notification.
// Delivery is at-least-once and unordered: a replayed notification for an
// already-paid order is acknowledged without touching state, and a stale
// failure can never regress a captured payment. In live mode an unsigned or
// badly signed notification is rejected; in sandbox a missing signature is
// tolerated with a warning.
func (s *service) HandleNotify(ctx context.Context, params url.Values) (*NotifyResult, error) {
	rawOrderID := params.Get("order_id")
	if rawOrderID == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "missing-order-id")
	}
	orderID, err := uuid.Parse(rawOrderID)
	if err != nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "missing-order-id")
	}

	fields := make(map[string]string, len(params))
	for key := range params {
		fields[key] = params.Get(key)
	}

	provided := params.Get(fieldSignature)
	if provided == "" {
		provided = params.Get(fieldSign)
	}
	switch {
	case provided != "":
		if !VerifySignature(fields, s.cfg.Secret(), provided) {
			return nil, pkgerrors.New(pkgerrors.CodeBadSignature, "bad-signature")
		}
	case s.cfg.IsLive():
		return nil, pkgerrors.New(pkgerrors.CodeBadSignature, "bad-signature")
	default:
		s.logg.Warn(ctx, "helapay notification accepted without signature (sandbox)")
	}

	payment, err := s.ordersRepo.FindPaymentByOrder(ctx, orderID)
	if err != nil {
		return nil, err
	}
	if payment.Status == enums.PaymentStatusPaid {
		return &NotifyResult{OrderID: orderID, Status: payment.Status, Replayed: true}, nil
	}

	raw, err := json.Marshal(fields)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "encoding notification")
	}

	success := IsSuccessNotification(NotificationOutcome(params))
	externalRef := params.Get("transaction_id")

	var status enums.PaymentStatus
	var replayed bool
	err = s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		repo := s.ordersRepo.WithTx(tx)

		updates := map[string]any{"raw": raw}
		if externalRef != "" {
			updates["external_ref"] = externalRef
		}
		status = enums.PaymentStatusFailed
		if success {
			status = enums.PaymentStatusPaid
		}
		updates["status"] = status

		applied, err := repo.MarkPaymentOutcome(ctx, orderID, updates)
		if err != nil {
			return err
		}
		if applied == 0 {
			// A concurrent delivery captured the payment between our read and
			// this write. Acknowledge without regressing it.
			status = enums.PaymentStatusPaid
			replayed = true
			return nil
		}
		if !success {
			return nil
		}
		return repo.UpdateOrder(ctx, orderID, map[string]any{
			"status":  enums.OrderStatusPaid,
			"paid_at": gorm.Expr("COALESCE(paid_at, ?)", s.now()),
		})
	})
	if err != nil {
		return nil, err
	}

	return &NotifyResult{OrderID: orderID, Status: status, Replayed: replayed}, nil
}
