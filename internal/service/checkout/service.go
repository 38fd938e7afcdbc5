package checkout

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/google/uuid"

	"github.com/veracare/marketplace-api/internal/cart"
	"github.com/veracare/marketplace-api/internal/model"
	"github.com/veracare/marketplace-api/internal/repository"
	"github.com/veracare/marketplace-api/pkg/errors"
)

type CheckoutService interface {
	Checkout(ctx context.Context, req *model.CheckoutRequest) (*model.CheckoutResponse, error)
	GetOrder(ctx context.Context, id uuid.UUID) (*model.Order, error)
	MarkPaid(ctx context.Context, id uuid.UUID) error
}

type Service struct {
	orderRepo   repository.OrderRepository
	productRepo repository.ProductRepository
	outboxRepo  repository.OutboxRepository
	payment     PaymentClient
	rules       cart.Rules
}

func NewService(orderRepo repository.OrderRepository, productRepo repository.ProductRepository, outboxRepo repository.OutboxRepository, payment PaymentClient, rules cart.Rules) *Service {
	return &Service{
		orderRepo:   orderRepo,
		productRepo: productRepo,
		outboxRepo:  outboxRepo,
		payment:     payment,
		rules:       rules,
	}
}

// Checkout snapshots catalog prices into a pending order, recomputes
// totals server-side, and requests a hosted payment session. Client
// prices are never trusted.
func (s *Service) Checkout(ctx context.Context, req *model.CheckoutRequest) (*model.CheckoutResponse, error) {
	items := make([]*model.CartItem, 0, len(req.Items))
	orderItems := make([]*model.OrderItem, 0, len(req.Items))
	for _, line := range req.Items {
		productID, err := uuid.Parse(line.ProductID)
		if err != nil {
			return nil, errors.BadRequest("invalid product id", err)
		}
		product, err := s.productRepo.Get(ctx, productID)
		if err != nil {
			return nil, errors.NotFound("product", err)
		}
		if !product.InStock {
			return nil, errors.BadRequest(fmt.Sprintf("%s is out of stock", product.Name), nil)
		}

		items = append(items, &model.CartItem{
			ProductID:  product.ID.String(),
			Slug:       product.Slug,
			Name:       product.Name,
			PriceCents: product.PriceCents,
			Quantity:   line.Quantity,
		})
		orderItems = append(orderItems, &model.OrderItem{
			ID:         uuid.New(),
			ProductID:  product.ID,
			Name:       product.Name,
			PriceCents: product.PriceCents,
			Quantity:   line.Quantity,
		})
	}

	totals := s.rules.Compute(items, req.PromoCode)

	order := &model.Order{
		Base: model.Base{
			ID: uuid.New(),
		},
		Email:           req.Email,
		ShippingAddress: req.ShippingAddress,
		SubtotalCents:   totals.SubtotalCents,
		DiscountCents:   totals.DiscountCents,
		ShippingCents:   totals.ShippingCents,
		TaxCents:        totals.TaxCents,
		TotalCents:      totals.TotalCents,
		PromoCode:       totals.PromoCode,
		Status:          model.OrderStatusPending,
		Items:           orderItems,
	}
	if err := s.orderRepo.Create(ctx, order); err != nil {
		return nil, fmt.Errorf("failed to create order: %w", err)
	}

	payload, _ := json.Marshal(map[string]interface{}{
		"order_id":    order.ID,
		"email":       order.Email,
		"total_cents": order.TotalCents,
	})
	event := &model.OutboxEvent{
		EventType: model.EventOrderCreated,
		Payload:   payload,
	}
	if err := s.outboxRepo.Create(ctx, event); err != nil {
		return nil, fmt.Errorf("failed to queue order event: %w", err)
	}

	url, err := s.payment.CreateSession(ctx, order)
	if err != nil {
		return nil, errors.BadGateway("payment session could not be created", err)
	}

	return &model.CheckoutResponse{URL: url}, nil
}

func (s *Service) GetOrder(ctx context.Context, id uuid.UUID) (*model.Order, error) {
	order, err := s.orderRepo.Get(ctx, id)
	if err != nil {
		return nil, errors.NotFound("order", err)
	}
	return order, nil
}

// MarkPaid is called by the payment provider callback.
func (s *Service) MarkPaid(ctx context.Context, id uuid.UUID) error {
	order, err := s.orderRepo.Get(ctx, id)
	if err != nil {
		return errors.NotFound("order", err)
	}
	if order.Status == model.OrderStatusPaid {
		return nil
	}
	if err := s.orderRepo.UpdateStatus(ctx, id, model.OrderStatusPaid); err != nil {
		return fmt.Errorf("failed to mark order paid: %w", err)
	}
	return nil
}
