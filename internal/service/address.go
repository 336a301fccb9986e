package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"

	"github.com/tiwac100/hydrogen/internal/accountapi"
	"github.com/tiwac100/hydrogen/internal/domain"
	"github.com/tiwac100/hydrogen/internal/event"
	apperrors "github.com/tiwac100/hydrogen/pkg/errors"
	"github.com/tiwac100/hydrogen/pkg/logger"
)

// Precondition errors. They are returned as errors, never as outcomes.
var (
	ErrUnauthenticated = &apperrors.AppError{
		Code:    "UNAUTHENTICATED",
		Message: "customer is not authenticated",
		Status:  http.StatusUnauthorized,
		Err:     apperrors.ErrUnauthorized,
	}
	ErrMissingAddressID = &apperrors.AppError{
		Code:    "MISSING_ADDRESS_ID",
		Message: "address id is required",
		Status:  http.StatusBadRequest,
		Err:     apperrors.ErrInvalidInput,
	}
)

// AccountClient is the remote account service as seen by the address screen.
type AccountClient interface {
	ListAddresses(ctx context.Context, token string) (*domain.AddressCollection, error)
	CreateAddress(ctx context.Context, token string, fields domain.AddressInput) (string, error)
	UpdateAddress(ctx context.Context, token, id string, fields domain.AddressInput) error
	DeleteAddress(ctx context.Context, token, id string) error
	SetDefaultAddress(ctx context.Context, token, id string) error
}

// AddressCache caches a customer's address collection. Get returns (nil, nil) on a miss.
type AddressCache interface {
	Get(ctx context.Context, token string) (*domain.AddressCollection, error)
	Set(ctx context.Context, token string, coll *domain.AddressCollection) error
	Invalidate(ctx context.Context, token string) error
}

// EventPublisher announces address mutations.
type EventPublisher interface {
	PublishAddressCreated(ctx context.Context, customerRef string, data event.AddressEventData) error
	PublishAddressUpdated(ctx context.Context, customerRef string, data event.AddressEventData) error
	PublishAddressDeleted(ctx context.Context, customerRef string, data event.AddressEventData) error
	PublishDefaultAddressChanged(ctx context.Context, customerRef string, data event.AddressEventData) error
}

// AddressForm is what the address edit page needs to render. AddressID is the
// canonical identifier the form posts back.
type AddressForm struct {
	AddressID string          `json:"address_id"`
	Address   *domain.Address `json:"address,omitempty"`
	IsNew     bool            `json:"is_new"`
	IsDefault bool            `json:"is_default"`
}

// AddressService implements the customer address screen on top of the account service.
type AddressService struct {
	client AccountClient
	cache  AddressCache
	events EventPublisher
	logger *slog.Logger
}

// NewAddressService creates an address service. cache and events may be nil.
func NewAddressService(client AccountClient, cache AddressCache, events EventPublisher, logger *slog.Logger) *AddressService {
	return &AddressService{
		client: client,
		cache:  cache,
		events: events,
		logger: logger,
	}
}

// ListAddresses returns the customer's address collection, from cache when possible.
func (s *AddressService) ListAddresses(ctx context.Context, token string) (*domain.AddressCollection, error) {
	if token == "" {
		return nil, ErrUnauthenticated
	}
	log := logger.FromContext(ctx, s.logger)

	if s.cache != nil {
		coll, err := s.cache.Get(ctx, token)
		if err != nil {
			log.WarnContext(ctx, "address cache read failed", slog.String("error", err.Error()))
		} else if coll != nil {
			return coll, nil
		}
	}

	coll, err := s.client.ListAddresses(ctx, token)
	if err != nil {
		return nil, remoteError("list addresses", err)
	}

	if s.cache != nil {
		if err := s.cache.Set(ctx, token, coll); err != nil {
			log.WarnContext(ctx, "address cache write failed", slog.String("error", err.Error()))
		}
	}
	return coll, nil
}

// LoadForm prepares the edit form for rawID. The literal "add" yields an empty
// create form without contacting the account service; anything else is reconciled
// against the customer's addresses, tolerating a stale suffix.
func (s *AddressService) LoadForm(ctx context.Context, token, rawID string) (*AddressForm, error) {
	if token == "" {
		return nil, ErrUnauthenticated
	}
	if rawID == domain.NewAddressID {
		return &AddressForm{AddressID: domain.NewAddressID, IsNew: true}, nil
	}

	coll, err := s.ListAddresses(ctx, token)
	if err != nil {
		return nil, err
	}

	addr, ok := coll.Resolve(rawID)
	if !ok {
		return nil, apperrors.NotFound("address", domain.NormalizeAddressID(rawID))
	}
	return &AddressForm{
		AddressID: addr.ID,
		Address:   addr,
		IsDefault: coll.IsDefault(addr.ID),
	}, nil
}

// Dispatch applies one submitted address form: delete, create or update, then an
// optional default assignment. Remote failures become failure outcomes carrying the
// remote message; only missing preconditions are returned as errors.
func (s *AddressService) Dispatch(ctx context.Context, sub domain.Submission, token string) (*domain.Outcome, error) {
	if token == "" {
		dispatchTotal.WithLabelValues(opUnknown, resultRejected).Inc()
		return nil, ErrUnauthenticated
	}
	rawID, ok := sub.AddressID()
	if !ok {
		dispatchTotal.WithLabelValues(opUnknown, resultRejected).Inc()
		return nil, ErrMissingAddressID
	}

	var (
		op  string
		err error
	)
	switch {
	case sub.Intent == domain.IntentDelete:
		op = opDelete
		err = s.deleteAddress(ctx, token, rawID)
	case rawID == domain.NewAddressID:
		op = opCreate
		err = s.createAddress(ctx, token, sub)
	default:
		op = opUpdate
		err = s.updateAddress(ctx, token, rawID, sub)
	}

	// Every branch issued at least one remote mutation, so the cached copy is stale
	// even when a follow-up call failed.
	s.invalidate(ctx, token)

	log := logger.FromContext(ctx, s.logger)
	if err != nil {
		dispatchTotal.WithLabelValues(op, resultFailure).Inc()
		log.WarnContext(ctx, "address mutation failed",
			slog.String("operation", op),
			slog.String("error", err.Error()),
		)
		return domain.Failure(failureMessage(err)), nil
	}

	dispatchTotal.WithLabelValues(op, resultSuccess).Inc()
	log.InfoContext(ctx, "address mutation applied",
		slog.String("operation", op),
		slog.Bool("default_requested", sub.WantsDefault()),
	)
	return domain.Redirect(domain.AccountPath(sub.Locale)), nil
}

// deleteAddress forwards the raw identifier untouched.
func (s *AddressService) deleteAddress(ctx context.Context, token, rawID string) error {
	if err := s.client.DeleteAddress(ctx, token, rawID); err != nil {
		return err
	}
	s.publish(ctx, event.TypeAddressDeleted, token, event.AddressEventData{
		AddressID: domain.NormalizeAddressID(rawID),
	})
	return nil
}

func (s *AddressService) createAddress(ctx context.Context, token string, sub domain.Submission) error {
	input := domain.NewAddressInput(sub.Form)
	wantsDefault := sub.WantsDefault()

	id, err := s.client.CreateAddress(ctx, token, input)
	if err != nil {
		return err
	}
	s.publish(ctx, event.TypeAddressCreated, token, event.AddressEventData{
		AddressID:     id,
		ChangedFields: input.FieldNames(),
	})

	if !wantsDefault {
		return nil
	}
	return s.setDefault(ctx, token, id)
}

func (s *AddressService) updateAddress(ctx context.Context, token, rawID string, sub domain.Submission) error {
	input := domain.NewAddressInput(sub.Form)
	id := domain.DecodeAddressID(rawID)

	if err := s.client.UpdateAddress(ctx, token, id, input); err != nil {
		return err
	}
	s.publish(ctx, event.TypeAddressUpdated, token, event.AddressEventData{
		AddressID:     id,
		ChangedFields: input.FieldNames(),
	})

	if !sub.WantsDefault() {
		return nil
	}
	return s.setDefault(ctx, token, id)
}

func (s *AddressService) setDefault(ctx context.Context, token, id string) error {
	if err := s.client.SetDefaultAddress(ctx, token, id); err != nil {
		return err
	}
	s.publish(ctx, event.TypeAddressDefaultChanged, token, event.AddressEventData{AddressID: id})
	return nil
}

func (s *AddressService) invalidate(ctx context.Context, token string) {
	if s.cache == nil {
		return
	}
	if err := s.cache.Invalidate(ctx, token); err != nil {
		logger.FromContext(ctx, s.logger).WarnContext(ctx, "address cache invalidation failed",
			slog.String("error", err.Error()),
		)
	}
}

func (s *AddressService) publish(ctx context.Context, eventType, token string, data event.AddressEventData) {
	if s.events == nil {
		return
	}
	ref := event.CustomerRef(token)

	var err error
	switch eventType {
	case event.TypeAddressCreated:
		err = s.events.PublishAddressCreated(ctx, ref, data)
	case event.TypeAddressUpdated:
		err = s.events.PublishAddressUpdated(ctx, ref, data)
	case event.TypeAddressDeleted:
		err = s.events.PublishAddressDeleted(ctx, ref, data)
	case event.TypeAddressDefaultChanged:
		err = s.events.PublishDefaultAddressChanged(ctx, ref, data)
	}
	if err != nil {
		logger.FromContext(ctx, s.logger).WarnContext(ctx, "failed to publish address event",
			slog.String("event_type", eventType),
			slog.String("error", err.Error()),
		)
	}
}

// failureMessage returns the message the account service gave, or a generic one
// when the failure happened before the service could answer.
func failureMessage(err error) string {
	if msg := apperrors.Message(err); msg != "" {
		return msg
	}
	return accountapi.UnavailableMessage
}

// remoteError keeps AppErrors from the account service and turns transport
// failures into a 503 the HTTP layer can render.
func remoteError(op string, err error) error {
	var appErr *apperrors.AppError
	if errors.As(err, &appErr) {
		return fmt.Errorf("%s: %w", op, err)
	}
	return &apperrors.AppError{
		Code:    "SERVICE_UNAVAILABLE",
		Message: accountapi.UnavailableMessage,
		Status:  http.StatusServiceUnavailable,
		Err:     fmt.Errorf("%s: %w", op, err),
	}
}
