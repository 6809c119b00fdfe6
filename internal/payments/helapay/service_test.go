package helapay

import (
	"context"
	"io"
	"net/url"
	"testing"

	"github.com/google/uuid"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"github.com/malpra/marketplace-backend/internal/orders"
	"github.com/malpra/marketplace-backend/pkg/config"
	"github.com/malpra/marketplace-backend/pkg/db/models"
	"github.com/malpra/marketplace-backend/pkg/enums"
	pkgerrors "github.com/malpra/marketplace-backend/pkg/errors"
	"github.com/malpra/marketplace-backend/pkg/logger"
	"github.com/malpra/marketplace-backend/pkg/types"
)

type gormTxRunner struct {
	db *gorm.DB
}

func (r gormTxRunner) WithTx(ctx context.Context, fn func(tx *gorm.DB) error) error {
	return r.db.WithContext(ctx).Transaction(fn)
}

func sandboxConfig() config.HelaPayConfig {
	return config.HelaPayConfig{
		Mode:               config.HelaPayModeSandbox,
		MerchantIDSandbox:  "M-SANDBOX",
		SecretSandbox:      "sandbox-secret",
		CheckoutURLSandbox: "https://sandbox.helapay.lk/checkout",
		ReturnURL:          "https://malpra.lk/payment/return",
		CancelURL:          "https://malpra.lk/payment/cancel",
		NotifyURL:          "https://api.malpra.lk/v1/webhooks/helapay",
		Currency:           "LKR",
	}
}

type fixture struct {
	db    *gorm.DB
	repo  orders.Repository
	svc   Service
	order *models.Order
}

func newFixture(t *testing.T, cfg config.HelaPayConfig) *fixture {
	t.Helper()
	dsn := "file:helapay_" + uuid.NewString() + "?mode=memory&cache=shared"
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{})
	if err != nil {
		t.Fatalf("open db: %v", err)
	}
	if err := db.AutoMigrate(&models.Order{}, &models.OrderItem{}, &models.VendorOrder{}, &models.Payment{}); err != nil {
		t.Fatalf("migrate: %v", err)
	}

	repo := orders.NewRepository(db)
	logg := logger.New(logger.Options{ServiceName: "helapay-test", Output: io.Discard})
	svc, err := NewService(gormTxRunner{db: db}, repo, cfg, logg)
	if err != nil {
		t.Fatalf("NewService: %v", err)
	}

	ctx := context.Background()
	order, err := repo.CreateOrder(ctx, &models.Order{
		BuyerID:       uuid.New(),
		Status:        enums.OrderStatusPending,
		TotalCents:    135500,
		PaymentMethod: enums.PaymentMethodHelaPay,
		ShippingAddress: &types.Address{
			Name:    "Nimal Perera",
			Phone:   "+94771234567",
			Email:   "nimal@example.lk",
			Line1:   "12 Galle Road",
			City:    "Colombo",
			Country: "LK",
		},
	})
	if err != nil {
		t.Fatalf("seed order: %v", err)
	}
	_, err = repo.CreatePayment(ctx, &models.Payment{
		OrderID:     order.ID,
		Method:      enums.PaymentMethodHelaPay,
		Gateway:     "helapay",
		AmountCents: order.TotalCents,
		Status:      enums.PaymentStatusInitiated,
	})
	if err != nil {
		t.Fatalf("seed payment: %v", err)
	}

	return &fixture{db: db, repo: repo, svc: svc, order: order}
}

func signedNotification(t *testing.T, secret string, fields map[string]string) url.Values {
	t.Helper()
	params := url.Values{}
	for k, v := range fields {
		params.Set(k, v)
	}
	params.Set("signature", Sign(fields, secret))
	return params
}

func TestInitCheckoutBuildsSignedPayload(t *testing.T) {
	t.Parallel()

	cfg := sandboxConfig()
	f := newFixture(t, cfg)

	session, err := f.svc.InitCheckout(context.Background(), f.order.BuyerID, enums.RoleBuyer, f.order.ID)
	if err != nil {
		t.Fatalf("InitCheckout: %v", err)
	}
	if session.CheckoutURL != cfg.CheckoutURLSandbox {
		t.Fatalf("url = %s", session.CheckoutURL)
	}
	if session.Fields["amount"] != "1355.00" {
		t.Fatalf("amount = %s, want 1355.00", session.Fields["amount"])
	}
	if session.Fields["currency"] != "LKR" {
		t.Fatalf("currency = %s", session.Fields["currency"])
	}
	if session.Fields["merchant_id"] != "M-SANDBOX" {
		t.Fatalf("merchant = %s", session.Fields["merchant_id"])
	}
	if session.Fields["customer_email"] != "nimal@example.lk" {
		t.Fatalf("customer_email = %s", session.Fields["customer_email"])
	}
	if !VerifySignature(session.Fields, cfg.SecretSandbox, session.Fields["signature"]) {
		t.Fatal("payload signature does not verify")
	}
}

func TestInitCheckoutRejectsForeignBuyerAndPaidOrders(t *testing.T) {
	t.Parallel()

	f := newFixture(t, sandboxConfig())
	ctx := context.Background()

	_, err := f.svc.InitCheckout(ctx, uuid.New(), enums.RoleBuyer, f.order.ID)
	if typed := pkgerrors.As(err); typed == nil || typed.Code() != pkgerrors.CodeNotFound {
		t.Fatalf("unexpected error: %v", err)
	}

	// Admins may init any order.
	if _, err := f.svc.InitCheckout(ctx, uuid.New(), enums.RoleAdmin, f.order.ID); err != nil {
		t.Fatalf("admin init: %v", err)
	}

	if err := f.repo.UpdatePayment(ctx, f.order.ID, map[string]any{"status": enums.PaymentStatusPaid}); err != nil {
		t.Fatalf("mark paid: %v", err)
	}
	_, err = f.svc.InitCheckout(ctx, f.order.BuyerID, enums.RoleBuyer, f.order.ID)
	if typed := pkgerrors.As(err); typed == nil || typed.Code() != pkgerrors.CodeStateConflict {
		t.Fatalf("unexpected error: %v", err)
	}
}

func TestInitCheckoutMisconfigured(t *testing.T) {
	t.Parallel()

	cfg := sandboxConfig()
	cfg.SecretSandbox = ""
	f := newFixture(t, cfg)

	_, err := f.svc.InitCheckout(context.Background(), f.order.BuyerID, enums.RoleBuyer, f.order.ID)
	if typed := pkgerrors.As(err); typed == nil || typed.Code() != pkgerrors.CodeMisconfigured {
		t.Fatalf("unexpected error: %v", err)
	}
}

func TestHandleNotifySuccessMarksOrderPaid(t *testing.T) {
	t.Parallel()

	cfg := sandboxConfig()
	f := newFixture(t, cfg)
	ctx := context.Background()

	params := signedNotification(t, cfg.SecretSandbox, map[string]string{
		"order_id":       f.order.ID.String(),
		"status":         "SUCCESS",
		"transaction_id": "HP-987",
		"amount":         "1355.00",
	})

	result, err := f.svc.HandleNotify(ctx, params)
	if err != nil {
		t.Fatalf("HandleNotify: %v", err)
	}
	if result.Status != enums.PaymentStatusPaid || result.Replayed {
		t.Fatalf("unexpected result: %+v", result)
	}

	order, err := f.repo.FindOrderByID(ctx, f.order.ID)
	if err != nil {
		t.Fatalf("load order: %v", err)
	}
	if order.Status != enums.OrderStatusPaid {
		t.Fatalf("order status = %s, want PAID", order.Status)
	}
	if order.PaidAt == nil {
		t.Fatal("expected paid_at set")
	}
	if order.Payment == nil || order.Payment.Status != enums.PaymentStatusPaid {
		t.Fatalf("payment = %+v", order.Payment)
	}
	if order.Payment.ExternalRef == nil || *order.Payment.ExternalRef != "HP-987" {
		t.Fatalf("external ref = %v", order.Payment.ExternalRef)
	}
	if len(order.Payment.Raw) == 0 {
		t.Fatal("expected raw notification stored")
	}
}

func TestHandleNotifyReplayIsIdempotent(t *testing.T) {
	t.Parallel()

	cfg := sandboxConfig()
	f := newFixture(t, cfg)
	ctx := context.Background()

	params := signedNotification(t, cfg.SecretSandbox, map[string]string{
		"order_id": f.order.ID.String(),
		"status":   "SUCCESS",
	})

	if _, err := f.svc.HandleNotify(ctx, params); err != nil {
		t.Fatalf("first notify: %v", err)
	}
	first, err := f.repo.FindOrderByID(ctx, f.order.ID)
	if err != nil {
		t.Fatalf("load order: %v", err)
	}

	result, err := f.svc.HandleNotify(ctx, params)
	if err != nil {
		t.Fatalf("replay notify: %v", err)
	}
	if !result.Replayed {
		t.Fatal("expected replay flag")
	}

	after, err := f.repo.FindOrderByID(ctx, f.order.ID)
	if err != nil {
		t.Fatalf("reload order: %v", err)
	}
	if after.PaidAt == nil || !after.PaidAt.Equal(*first.PaidAt) {
		t.Fatalf("paid_at moved on replay: %v -> %v", first.PaidAt, after.PaidAt)
	}
}

func TestHandleNotifyStaleFailureCannotRegressPaid(t *testing.T) {
	t.Parallel()

	cfg := sandboxConfig()
	f := newFixture(t, cfg)
	ctx := context.Background()

	success := signedNotification(t, cfg.SecretSandbox, map[string]string{
		"order_id": f.order.ID.String(),
		"status":   "SUCCESS",
	})
	if _, err := f.svc.HandleNotify(ctx, success); err != nil {
		t.Fatalf("success notify: %v", err)
	}

	stale := signedNotification(t, cfg.SecretSandbox, map[string]string{
		"order_id": f.order.ID.String(),
		"status":   "FAILED",
		"code":     "51",
	})
	result, err := f.svc.HandleNotify(ctx, stale)
	if err != nil {
		t.Fatalf("stale notify: %v", err)
	}
	if result.Status != enums.PaymentStatusPaid || !result.Replayed {
		t.Fatalf("unexpected result: %+v", result)
	}

	order, err := f.repo.FindOrderByID(ctx, f.order.ID)
	if err != nil {
		t.Fatalf("load order: %v", err)
	}
	if order.Status != enums.OrderStatusPaid {
		t.Fatalf("order status = %s, want PAID", order.Status)
	}
	if order.Payment == nil || order.Payment.Status != enums.PaymentStatusPaid {
		t.Fatalf("payment regressed: %+v", order.Payment)
	}
}

func TestHandleNotifyFailureMarksPaymentFailed(t *testing.T) {
	t.Parallel()

	cfg := sandboxConfig()
	f := newFixture(t, cfg)
	ctx := context.Background()

	params := signedNotification(t, cfg.SecretSandbox, map[string]string{
		"order_id": f.order.ID.String(),
		"status":   "FAILED",
		"code":     "51",
	})

	result, err := f.svc.HandleNotify(ctx, params)
	if err != nil {
		t.Fatalf("HandleNotify: %v", err)
	}
	if result.Status != enums.PaymentStatusFailed {
		t.Fatalf("status = %s, want FAILED", result.Status)
	}

	order, err := f.repo.FindOrderByID(ctx, f.order.ID)
	if err != nil {
		t.Fatalf("load order: %v", err)
	}
	if order.Status != enums.OrderStatusPending {
		t.Fatalf("order status = %s, want PENDING", order.Status)
	}
}

func TestHandleNotifyRejectsBadSignature(t *testing.T) {
	t.Parallel()

	cfg := sandboxConfig()
	f := newFixture(t, cfg)

	params := url.Values{}
	params.Set("order_id", f.order.ID.String())
	params.Set("status", "SUCCESS")
	params.Set("signature", "0000000000000000")

	_, err := f.svc.HandleNotify(context.Background(), params)
	if typed := pkgerrors.As(err); typed == nil || typed.Code() != pkgerrors.CodeBadSignature {
		t.Fatalf("unexpected error: %v", err)
	}
}

func TestHandleNotifyMissingSignature(t *testing.T) {
	t.Parallel()

	// Sandbox tolerates a missing signature.
	cfg := sandboxConfig()
	f := newFixture(t, cfg)
	params := url.Values{}
	params.Set("order_id", f.order.ID.String())
	params.Set("status", "SUCCESS")
	if _, err := f.svc.HandleNotify(context.Background(), params); err != nil {
		t.Fatalf("sandbox notify: %v", err)
	}

	// Live mode does not.
	live := sandboxConfig()
	live.Mode = config.HelaPayModeLive
	live.MerchantIDLive = "M-LIVE"
	live.SecretLive = "live-secret"
	live.CheckoutURLLive = "https://helapay.lk/checkout"
	fl := newFixture(t, live)
	params = url.Values{}
	params.Set("order_id", fl.order.ID.String())
	params.Set("status", "SUCCESS")
	_, err := fl.svc.HandleNotify(context.Background(), params)
	if typed := pkgerrors.As(err); typed == nil || typed.Code() != pkgerrors.CodeBadSignature {
		t.Fatalf("unexpected error: %v", err)
	}
}

func TestHandleNotifyMissingOrder(t *testing.T) {
	t.Parallel()

	cfg := sandboxConfig()
	f := newFixture(t, cfg)

	_, err := f.svc.HandleNotify(context.Background(), url.Values{})
	if typed := pkgerrors.As(err); typed == nil || typed.Code() != pkgerrors.CodeValidation {
		t.Fatalf("unexpected error: %v", err)
	}

	params := signedNotification(t, cfg.SecretSandbox, map[string]string{
		"order_id": uuid.NewString(),
		"status":   "SUCCESS",
	})
	_, err = f.svc.HandleNotify(context.Background(), params)
	if typed := pkgerrors.As(err); typed == nil || typed.Code() != pkgerrors.CodeNotFound {
		t.Fatalf("unexpected error: %v", err)
	}
}
