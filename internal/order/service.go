package order

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"parsshop-be/internal/logger"
	"parsshop-be/internal/metrics"
	"parsshop-be/internal/payment"
	"parsshop-be/internal/pricing"
	"parsshop-be/internal/product"
	"parsshop-be/internal/sms"
	"parsshop-be/internal/variable"

	"go.uber.org/zap"
)

// Settings carries the configured cost percentages and gateway bounds.
// The exchange rate is deliberately not here: it is read per order and
// passed down by parameter, so a mid-flight rate change cannot split one
// order's pricing across two rates.
type Settings struct {
	ServicePct        float64
	GuaranteePct      float64
	BusinessProfitPct float64
	ShippingPct       float64

	// GatewayCeilingIRR is the largest amount the gateway accepts. Orders
	// at or over it are committed unpaid with a finalize-payment link.
	GatewayCeilingIRR int64

	CallbackURL  string
	DashboardURL string
}

func (st Settings) withOverrides(p Percentages) Settings {
	if p.Service != nil {
		st.ServicePct = *p.Service
	}
	if p.Guarantee != nil {
		st.GuaranteePct = *p.Guarantee
	}
	if p.BusinessProfit != nil {
		st.BusinessProfitPct = *p.BusinessProfit
	}
	if p.Shipping != nil {
		st.ShippingPct = *p.Shipping
	}
	return st
}

// VariantSource is the slice of the catalog the orchestrator needs.
type VariantSource interface {
	GetVariantsByIDs(ctx context.Context, ids []int64) (map[int64]*product.Variant, error)
}

// Discounts validates a code against a cost basis and burns a use inside
// the order transaction.
type Discounts interface {
	Validate(ctx context.Context, code string, orderCostBasis, userID int64) (int64, error)
	IncrementUsageTx(ctx context.Context, tx *sql.Tx, code string) error
}

// RateSource yields the stored exchange rates.
type RateSource interface {
	GetRate(ctx context.Context, name string) (float64, error)
}

// AddressBook resolves the phone number an order's SMS goes to.
type AddressBook interface {
	Phone(ctx context.Context, addressID int64) (string, error)
}

type Service interface {
	Create(ctx context.Context, userID int64, input CreateInput) (*CreateResult, error)
	AdminCreate(ctx context.Context, input AdminCreateInput) (*CreateResult, error)
	Update(ctx context.Context, userID, orderID int64, input UpdateInput, admin bool) (*Order, error)
	ChangeStatus(ctx context.Context, orderID int64, to Status) (*Order, error)

	// VerifyPayment settles the gateway callback. Both first-time and
	// already-verified results mark the order paid; the flip happens at
	// most once and stock is consumed only on the flip.
	VerifyPayment(ctx context.Context, authority, callbackStatus string) (*Order, int64, error)

	// FinalizePayment re-attempts a gateway session for an order that was
	// committed unpaid because its amount exceeded the gateway ceiling.
	FinalizePayment(ctx context.Context, userID, orderID int64) (*CreateResult, error)

	Get(ctx context.Context, userID, orderID int64, admin bool) (*Order, error)
	List(ctx context.Context, filter *Filter, limit, page *int32) ([]*Order, error)
	ListStale(ctx context.Context, olderThan time.Time) ([]*Order, error)
	Delete(ctx context.Context, orderID int64) error
}

type service struct {
	repo      Repository
	variants  VariantSource
	discounts Discounts
	rates     RateSource
	gateway   payment.Gateway
	sender    sms.Sender
	addresses AddressBook
	settings  Settings
}

func NewService(
	repo Repository,
	variants VariantSource,
	discounts Discounts,
	rates RateSource,
	gateway payment.Gateway,
	sender sms.Sender,
	addresses AddressBook,
	settings Settings,
) Service {
	return &service{
		repo:      repo,
		variants:  variants,
		discounts: discounts,
		rates:     rates,
		gateway:   gateway,
		sender:    sender,
		addresses: addresses,
		settings:  settings,
	}
}

// priced is the outcome of running the pricing pipeline for one order.
type priced struct {
	itemsCost      int64
	discountAmount int64
	costs          map[string]int64
	totalCost      int64
	irrTotalCost   int64
	description    string
	items          []OrderItem
	newCode        bool
}

// price runs the full pipeline: items cost and description, discount
// (validated and subtracted before the percentage costs), the four
// additional costs, and the single aggregate IRR conversion.
func (s *service) price(
	ctx context.Context,
	userID int64,
	items []ItemInput,
	code *string,
	storedCode *string,
	st Settings,
	predetermined [4]*int64,
	rate float64,
) (*priced, error) {
	ids := make([]int64, 0, len(items))
	for _, item := range items {
		ids = append(ids, item.VariantID)
	}
	variants, err := s.variants.GetVariantsByIDs(ctx, ids)
	if err != nil {
		return nil, err
	}

	records := make(map[int64]pricing.VariantRecord, len(variants))
	for id, v := range variants {
		records[id] = pricing.VariantRecord{
			VariantID:     v.ID,
			ProductID:     v.ProductID,
			Stock:         v.Stock,
			Price:         v.Price,
			DiscountPrice: v.DiscountPrice,
		}
	}

	inputs := make([]pricing.ItemInput, len(items))
	for i, item := range items {
		inputs[i] = pricing.ItemInput{
			VariantID:     item.VariantID,
			Quantity:      item.Quantity,
			Price:         item.Price,
			DiscountPrice: item.DiscountPrice,
		}
	}

	itemsCost, description, err := pricing.ItemsCost(inputs, records)
	if err != nil {
		return nil, err
	}

	p, err := s.assemble(ctx, userID, itemsCost, description, code, storedCode, st, predetermined, rate)
	if err != nil {
		return nil, err
	}

	p.items = make([]OrderItem, len(items))
	for i, item := range items {
		v := variants[item.VariantID]
		oi := OrderItem{
			ProductID:     v.ProductID,
			VariantID:     v.ID,
			Quantity:      item.Quantity,
			Price:         v.Price,
			DiscountPrice: v.DiscountPrice,
		}
		if item.ID != nil {
			oi.ID = *item.ID
		}
		p.items[i] = oi
	}

	return p, nil
}

// reprice recomputes an order's totals from its stored item snapshots.
// Item prices are fixed copies taken at creation, so they are not pushed
// back through the anti-tamper check: a batch repricing may have moved
// the live variant prices since, and that must never invalidate a stored
// order. The raw item cost is recovered from the stored components.
func (s *service) reprice(
	ctx context.Context,
	o *Order,
	code *string,
	st Settings,
	rate float64,
) (*priced, error) {
	return s.assemble(ctx, o.UserID, o.ItemsCost(), o.Description, code, o.DiscountCode, st, [4]*int64{}, rate)
}

// assemble is the back half of the pricing pipeline: discount (validated
// and subtracted before the percentage costs), the four additional costs,
// and the single aggregate IRR conversion.
func (s *service) assemble(
	ctx context.Context,
	userID int64,
	itemsCost int64,
	description string,
	code *string,
	storedCode *string,
	st Settings,
	predetermined [4]*int64,
	rate float64,
) (*priced, error) {
	p := &priced{itemsCost: itemsCost, description: description}

	effective := storedCode
	if code != nil {
		if *code == "" {
			effective = nil
		} else {
			effective = code
			p.newCode = storedCode == nil || *storedCode != *code
		}
	}
	if effective != nil {
		amount, err := s.discounts.Validate(ctx, *effective, itemsCost, userID)
		if err != nil {
			return nil, err
		}
		p.discountAmount = amount
	}

	basis := itemsCost - p.discountAmount
	if basis < 0 {
		basis = 0
	}

	costs, err := pricing.AdditionalCosts(basis, []pricing.CostSpec{
		{Name: "service", Percentage: st.ServicePct, Predetermined: predetermined[0]},
		{Name: "guarantee", Percentage: st.GuaranteePct, Predetermined: predetermined[1]},
		{Name: "business_profit", Percentage: st.BusinessProfitPct, Predetermined: predetermined[2]},
		{Name: "shipping", Percentage: st.ShippingPct, Predetermined: predetermined[3]},
	})
	if err != nil {
		return nil, err
	}
	p.costs = costs

	p.totalCost = basis
	for _, c := range costs {
		p.totalCost += c
	}
	p.irrTotalCost = pricing.ToLocalCurrency(p.totalCost, rate)

	return p, nil
}

func (s *service) Create(ctx context.Context, userID int64, input CreateInput) (*CreateResult, error) {
	return s.create(ctx, userID, input, s.settings, [4]*int64{}, false)
}

func (s *service) AdminCreate(ctx context.Context, input AdminCreateInput) (*CreateResult, error) {
	st := s.settings.withOverrides(input.Percentages)
	predetermined := [4]*int64{
		input.ServiceCost, input.GuaranteeCost, input.BusinessProfit, input.ShippingCost,
	}
	return s.create(ctx, input.UserID, input.CreateInput, st, predetermined, true)
}

func (s *service) create(
	ctx context.Context,
	userID int64,
	input CreateInput,
	st Settings,
	predetermined [4]*int64,
	notifySummary bool,
) (*CreateResult, error) {
	log := logger.FromCtx(ctx).With(
		zap.String("service", "Order"),
		zap.String("method", "Create"),
		zap.Int64("user_id", userID),
	)

	// Rate first: without it nothing downstream can be priced.
	rate, err := s.rates.GetRate(ctx, variable.RateCurrency)
	if err != nil {
		log.Error("exchange rate unavailable", zap.Error(err))
		return nil, err
	}

	p, err := s.price(ctx, userID, input.Items, input.DiscountCode, nil, st, predetermined, rate)
	if err != nil {
		return nil, err
	}

	o := &Order{
		UserID:         userID,
		AddressID:      input.AddressID,
		TotalCost:      p.totalCost,
		IRRTotalCost:   p.irrTotalCost,
		DiscountAmount: p.discountAmount,
		ServiceCost:    p.costs["service"],
		GuaranteeCost:  p.costs["guarantee"],
		BusinessProfit: p.costs["business_profit"],
		ShippingCost:   p.costs["shipping"],
		DeliveryType:   input.DeliveryType,
		PaymentType:    input.PaymentType,
		Status:         StatusSubmitted,
		PaymentStatus:  PaymentStatusUnpaid,
		Description:    p.description,
	}
	if p.discountAmount > 0 && input.DiscountCode != nil && *input.DiscountCode != "" {
		o.DiscountCode = input.DiscountCode
	}

	tx, err := s.repo.BeginTx(ctx)
	if err != nil {
		return nil, err
	}
	committed := false
	defer func() {
		if !committed {
			tx.Rollback()
		}
	}()

	if err := s.repo.CreateTx(ctx, tx, o); err != nil {
		log.Error("inserting order failed", zap.Error(err))
		return nil, err
	}
	if err := s.repo.InsertItemsTx(ctx, tx, o.ID, p.items); err != nil {
		log.Error("inserting items failed", zap.Error(err))
		return nil, err
	}
	for i := range p.items {
		p.items[i].OrderID = o.ID
	}
	o.Items = p.items

	// Burning the use sits in the same transaction as the order itself:
	// a rolled-back order never counts against the code.
	if o.DiscountCode != nil {
		if err := s.discounts.IncrementUsageTx(ctx, tx, *o.DiscountCode); err != nil {
			return nil, err
		}
	}

	result := &CreateResult{Order: o}

	switch {
	case o.PaymentType != PaymentOnline:
		result.Link = fmt.Sprintf("%s/orders/%d", s.settings.DashboardURL, o.ID)

	case o.IRRTotalCost >= s.settings.GatewayCeilingIRR:
		// Too large for the gateway: commit unpaid, settle later.
		result.Link = fmt.Sprintf("%s/orders/%d/finalize-payment", s.settings.DashboardURL, o.ID)
		log.Info("order over gateway ceiling, routed to finalize flow",
			zap.Int64("order_id", o.ID),
			zap.Int64("irr_total", o.IRRTotalCost),
		)

	default:
		res, err := s.gateway.RequestPayment(ctx, payment.RequestParams{
			Amount:      o.IRRTotalCost,
			CallbackURL: s.settings.CallbackURL,
			Description: o.Description,
			Mobile:      input.Mobile,
			OrderID:     o.ID,
		})
		if err != nil {
			// The whole order rolls back with the failed session.
			metrics.GatewayRequests.WithLabelValues("error").Inc()
			log.Error("gateway request failed", zap.Error(err))
			return nil, err
		}
		metrics.GatewayRequests.WithLabelValues("ok").Inc()

		if err := s.repo.SetAuthorityTx(ctx, tx, o.ID, res.Authority); err != nil {
			return nil, err
		}
		o.Authority = &res.Authority
		result.RedirectURL = res.RedirectURL
	}

	if err := tx.Commit(); err != nil {
		return nil, err
	}
	committed = true
	metrics.OrdersCreated.WithLabelValues(string(o.PaymentType)).Inc()

	log.Info("order created",
		zap.Int64("order_id", o.ID),
		zap.Int64("total_cost", o.TotalCost),
		zap.Int64("irr_total", o.IRRTotalCost),
		zap.String("payment_type", string(o.PaymentType)),
	)

	if notifySummary {
		if phone := s.recipientPhone(ctx, o, input.Mobile); phone != "" {
			s.sender.Send(ctx, phone, sms.OrderSummary(o.ID, o.Description, o.IRRTotalCost))
		}
	}

	return result, nil
}

func (s *service) Update(ctx context.Context, userID, orderID int64, input UpdateInput, admin bool) (*Order, error) {
	log := logger.FromCtx(ctx).With(
		zap.String("service", "Order"),
		zap.String("method", "Update"),
		zap.Int64("order_id", orderID),
	)

	o, err := s.repo.GetByID(ctx, orderID)
	if err != nil {
		return nil, err
	}
	if !admin && o.UserID != userID {
		return nil, ErrAccessDenied
	}
	if o.PaymentStatus == PaymentStatusPaid {
		return nil, ErrAlreadyPaid
	}

	if input.AddressID != nil {
		o.AddressID = input.AddressID
	}
	if input.DeliveryType != nil {
		o.DeliveryType = *input.DeliveryType
	}

	pricingChanged := input.Items != nil ||
		input.DiscountCode != nil ||
		input.Service != nil || input.Guarantee != nil ||
		input.BusinessProfit != nil || input.Shipping != nil

	tx, err := s.repo.BeginTx(ctx)
	if err != nil {
		return nil, err
	}
	committed := false
	defer func() {
		if !committed {
			tx.Rollback()
		}
	}()

	if pricingChanged {
		rate, err := s.rates.GetRate(ctx, variable.RateCurrency)
		if err != nil {
			return nil, err
		}

		st := s.settings
		if admin {
			st = st.withOverrides(input.Percentages)
		}

		var p *priced
		if input.Items != nil {
			p, err = s.price(ctx, o.UserID, input.Items, input.DiscountCode, o.DiscountCode, st, [4]*int64{}, rate)
		} else {
			p, err = s.reprice(ctx, o, input.DiscountCode, st, rate)
		}
		if err != nil {
			return nil, err
		}

		o.TotalCost = p.totalCost
		o.IRRTotalCost = p.irrTotalCost
		o.DiscountAmount = p.discountAmount
		o.ServiceCost = p.costs["service"]
		o.GuaranteeCost = p.costs["guarantee"]
		o.BusinessProfit = p.costs["business_profit"]
		o.ShippingCost = p.costs["shipping"]
		o.Description = p.description
		switch {
		case input.DiscountCode != nil && *input.DiscountCode == "":
			o.DiscountCode = nil
			o.DiscountAmount = 0
		case input.DiscountCode != nil:
			o.DiscountCode = input.DiscountCode
		}

		if input.Items != nil {
			if err := s.repo.DiffItemsTx(ctx, tx, o.ID, p.items); err != nil {
				log.Error("item diff failed", zap.Error(err))
				return nil, err
			}
		}
		if p.newCode && o.DiscountCode != nil {
			if err := s.discounts.IncrementUsageTx(ctx, tx, *o.DiscountCode); err != nil {
				return nil, err
			}
		}
	}

	if err := s.repo.UpdateTx(ctx, tx, o); err != nil {
		return nil, err
	}

	if err := tx.Commit(); err != nil {
		return nil, err
	}
	committed = true

	log.Info("order updated", zap.Bool("repriced", pricingChanged))
	return s.repo.GetByID(ctx, orderID)
}

// ChangeStatus runs the status lifecycle. The transition table gates
// manual orders only; online orders' state is driven by settlement, so
// an admin override on them is not table-checked.
func (s *service) ChangeStatus(ctx context.Context, orderID int64, to Status) (*Order, error) {
	log := logger.FromCtx(ctx).With(
		zap.String("service", "Order"),
		zap.String("method", "ChangeStatus"),
		zap.Int64("order_id", orderID),
		zap.String("to", string(to)),
	)

	o, err := s.repo.GetByID(ctx, orderID)
	if err != nil {
		return nil, err
	}
	from := o.Status
	if o.PaymentType != PaymentOnline && !CanTransition(from, to) {
		return nil, &InvalidTransitionError{From: from, To: to}
	}
	if from == to {
		return o, nil
	}

	tx, err := s.repo.BeginTx(ctx)
	if err != nil {
		return nil, err
	}
	committed := false
	defer func() {
		if !committed {
			tx.Rollback()
		}
	}()

	// Stock moves with the status, in the same transaction.
	switch effectOf(to) {
	case stockConsume:
		// Settlement already consumed the stock of a paid online order;
		// repeating it here would double-count the same items.
		if o.PaymentType != PaymentOnline || o.PaymentStatus != PaymentStatusPaid {
			for _, item := range o.Items {
				if err := s.repo.ConsumeStockTx(ctx, tx, item.VariantID, item.Quantity); err != nil {
					log.Warn("stock consume failed",
						zap.Int64("variant_id", item.VariantID), zap.Error(err))
					return nil, err
				}
			}
		}
	case stockRestock:
		for _, item := range o.Items {
			if err := s.repo.RestockTx(ctx, tx, item.VariantID, item.Quantity); err != nil {
				return nil, err
			}
		}
	}

	if err := s.repo.UpdateStatusTx(ctx, tx, o.ID, to); err != nil {
		return nil, err
	}

	if err := tx.Commit(); err != nil {
		return nil, err
	}
	committed = true

	o.Status = to
	log.Info("status changed", zap.String("from", string(from)))
	return o, nil
}

func (s *service) VerifyPayment(ctx context.Context, authority, callbackStatus string) (*Order, int64, error) {
	log := logger.FromCtx(ctx).With(
		zap.String("service", "Order"),
		zap.String("method", "VerifyPayment"),
		zap.String("authority", authority),
	)

	o, err := s.repo.GetByAuthority(ctx, authority)
	if err != nil {
		return nil, 0, err
	}
	if o.PaymentType != PaymentOnline {
		return nil, 0, ErrNotOnlineOrder
	}
	if callbackStatus != "" && callbackStatus != "OK" {
		log.Info("buyer canceled at the gateway")
		metrics.PaymentsVerified.WithLabelValues("canceled").Inc()
		return o, 0, ErrPaymentCanceled
	}

	res, err := s.gateway.VerifyPayment(ctx, authority, o.IRRTotalCost)
	if err != nil {
		metrics.PaymentsVerified.WithLabelValues("failed").Inc()
		var gerr *payment.GatewayError
		if errors.As(err, &gerr) {
			log.Warn("gateway rejected verification",
				zap.Int("code", gerr.Code), zap.String("message", gerr.Message))
		} else {
			log.Error("verification failed", zap.Error(err))
		}
		return nil, 0, err
	}

	flipped, err := s.settle(ctx, o)
	if err != nil {
		return nil, 0, err
	}

	if flipped {
		metrics.PaymentsVerified.WithLabelValues("paid").Inc()
		log.Info("payment settled",
			zap.Int64("order_id", o.ID), zap.Int64("ref_id", res.RefID))
		if phone := s.recipientPhone(ctx, o, ""); phone != "" {
			s.sender.Send(ctx, phone, sms.OrderConfirmation(o.ID, res.RefID))
		}
	} else {
		// A repeated callback or a sweeper race: already settled, nothing
		// to consume again.
		metrics.PaymentsVerified.WithLabelValues("already_paid").Inc()
		log.Info("payment was already settled", zap.Int64("order_id", o.ID))
	}

	o.PaymentStatus = PaymentStatusPaid
	return o, res.RefID, nil
}

// settle flips payment_status and consumes stock, both inside one
// transaction. The SQL guard on the flip makes the pair exactly-once.
func (s *service) settle(ctx context.Context, o *Order) (bool, error) {
	tx, err := s.repo.BeginTx(ctx)
	if err != nil {
		return false, err
	}
	committed := false
	defer func() {
		if !committed {
			tx.Rollback()
		}
	}()

	flipped, err := s.repo.MarkPaidTx(ctx, tx, o.ID)
	if err != nil {
		return false, err
	}
	if flipped {
		// The drain clamps at zero instead of failing: the buyer has
		// already been charged, so an exhausted variant must not block
		// the paid flip (the sweeper would otherwise re-fail forever).
		for _, item := range o.Items {
			if err := s.repo.DrainStockTx(ctx, tx, item.VariantID, item.Quantity); err != nil {
				return false, err
			}
		}
	}

	if err := tx.Commit(); err != nil {
		return false, err
	}
	committed = true
	return flipped, nil
}

func (s *service) FinalizePayment(ctx context.Context, userID, orderID int64) (*CreateResult, error) {
	log := logger.FromCtx(ctx).With(
		zap.String("service", "Order"),
		zap.String("method", "FinalizePayment"),
		zap.Int64("order_id", orderID),
	)

	o, err := s.repo.GetByID(ctx, orderID)
	if err != nil {
		return nil, err
	}
	if o.UserID != userID {
		return nil, ErrAccessDenied
	}
	if o.PaymentType != PaymentOnline {
		return nil, ErrNotOnlineOrder
	}
	if o.PaymentStatus == PaymentStatusPaid {
		return nil, ErrAlreadyPaid
	}
	if o.IRRTotalCost >= s.settings.GatewayCeilingIRR {
		return nil, ErrOverGatewayCeiling
	}

	res, err := s.gateway.RequestPayment(ctx, payment.RequestParams{
		Amount:      o.IRRTotalCost,
		CallbackURL: s.settings.CallbackURL,
		Description: o.Description,
		OrderID:     o.ID,
	})
	if err != nil {
		metrics.GatewayRequests.WithLabelValues("error").Inc()
		log.Error("gateway request failed", zap.Error(err))
		return nil, err
	}
	metrics.GatewayRequests.WithLabelValues("ok").Inc()

	tx, err := s.repo.BeginTx(ctx)
	if err != nil {
		return nil, err
	}
	committed := false
	defer func() {
		if !committed {
			tx.Rollback()
		}
	}()
	if err := s.repo.SetAuthorityTx(ctx, tx, o.ID, res.Authority); err != nil {
		return nil, err
	}
	if err := tx.Commit(); err != nil {
		return nil, err
	}
	committed = true

	o.Authority = &res.Authority
	log.Info("finalize session opened", zap.String("new_authority", res.Authority))
	return &CreateResult{Order: o, RedirectURL: res.RedirectURL}, nil
}

func (s *service) Get(ctx context.Context, userID, orderID int64, admin bool) (*Order, error) {
	o, err := s.repo.GetByID(ctx, orderID)
	if err != nil {
		return nil, err
	}
	if !admin && o.UserID != userID {
		return nil, ErrAccessDenied
	}
	return o, nil
}

func (s *service) List(ctx context.Context, filter *Filter, limit, page *int32) ([]*Order, error) {
	return s.repo.List(ctx, filter, limit, page)
}

func (s *service) ListStale(ctx context.Context, olderThan time.Time) ([]*Order, error) {
	return s.repo.ListStalePending(ctx, olderThan)
}

func (s *service) Delete(ctx context.Context, orderID int64) error {
	return s.repo.Delete(ctx, orderID)
}

func (s *service) recipientPhone(ctx context.Context, o *Order, fallback string) string {
	if o.AddressID != nil {
		phone, err := s.addresses.Phone(ctx, *o.AddressID)
		if err == nil && phone != "" {
			return phone
		}
		logger.FromCtx(ctx).Warn("address phone lookup failed",
			zap.Int64("address_id", *o.AddressID), zap.Error(err))
	}
	return fallback
}

