package api

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/shopspring/decimal"

	"github.com/carlosedufaraujo/Plataforma-gesta-futuros-black/internal/engine"
	"github.com/carlosedufaraujo/Plataforma-gesta-futuros-black/internal/portfolio"
	"github.com/carlosedufaraujo/Plataforma-gesta-futuros-black/types"
)

var errBadRequest = errors.New("bad request")

var validate = validator.New()

// decode reads a JSON body into dst and checks its struct tags.
func decode(r *http.Request, dst interface{}) error {
	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()
	if err := dec.Decode(dst); err != nil {
		return fmt.Errorf("invalid request body: %v: %w", err, errBadRequest)
	}
	return validate.Struct(dst)
}

type openPositionRequest struct {
	UserID       string          `json:"userId"`
	BrokerageID  string          `json:"brokerageId"`
	Contract     string          `json:"contract" validate:"required,min=3"`
	Direction    string          `json:"direction" validate:"required"`
	Quantity     int64           `json:"quantity" validate:"required,gt=0"`
	EntryPrice   decimal.Decimal `json:"entryPrice"`
	CurrentPrice decimal.Decimal `json:"currentPrice"`
	EntryDate    *time.Time      `json:"entryDate"`
	Fees         decimal.Decimal `json:"fees"`
}

func (req openPositionRequest) toNewPosition() (portfolio.NewPosition, error) {
	dir, err := types.ParseDirection(req.Direction)
	if err != nil {
		return portfolio.NewPosition{}, err
	}
	np := portfolio.NewPosition{
		UserID:       req.UserID,
		BrokerageID:  req.BrokerageID,
		Contract:     req.Contract,
		Direction:    dir,
		Quantity:     req.Quantity,
		EntryPrice:   req.EntryPrice,
		CurrentPrice: req.CurrentPrice,
		Fees:         req.Fees,
	}
	if req.EntryDate != nil {
		np.EntryDate = req.EntryDate.UTC()
	}
	return np, nil
}

type updatePositionRequest struct {
	Direction    *string          `json:"direction"`
	Quantity     *int64           `json:"quantity" validate:"omitempty,gt=0"`
	EntryPrice   *decimal.Decimal `json:"entryPrice"`
	CurrentPrice *decimal.Decimal `json:"currentPrice"`
	EntryDate    *time.Time       `json:"entryDate"`
	Fees         *decimal.Decimal `json:"fees"`
}

func (req updatePositionRequest) toUpdate() (portfolio.PositionUpdate, error) {
	u := portfolio.PositionUpdate{
		Quantity:     req.Quantity,
		EntryPrice:   req.EntryPrice,
		CurrentPrice: req.CurrentPrice,
		Fees:         req.Fees,
	}
	if req.Direction != nil {
		dir, err := types.ParseDirection(*req.Direction)
		if err != nil {
			return portfolio.PositionUpdate{}, err
		}
		u.Direction = &dir
	}
	if req.EntryDate != nil {
		t := req.EntryDate.UTC()
		u.EntryDate = &t
	}
	return u, nil
}

type closePositionRequest struct {
	ExitPrice decimal.Decimal `json:"exitPrice"`
	Quantity  int64           `json:"quantity" validate:"gte=0"`
}

type closeContractRequest struct {
	Price decimal.Decimal `json:"price"`
}

type optionRequest struct {
	UserID         string          `json:"userId"`
	BrokerageID    string          `json:"brokerageId"`
	Contract       string          `json:"contract" validate:"required,min=3"`
	OptionType     string          `json:"optionType" validate:"required"`
	Strike         decimal.Decimal `json:"strike"`
	Premium        decimal.Decimal `json:"premium"`
	Quantity       int64           `json:"quantity" validate:"required,gt=0"`
	IsPurchased    bool            `json:"isPurchased"`
	ExpirationDate time.Time       `json:"expirationDate"`
}

func (req optionRequest) toNewOption() (portfolio.NewOption, error) {
	typ, err := types.ParseOptionType(req.OptionType)
	if err != nil {
		return portfolio.NewOption{}, err
	}
	return portfolio.NewOption{
		UserID:         req.UserID,
		BrokerageID:    req.BrokerageID,
		Contract:       req.Contract,
		Type:           typ,
		Strike:         req.Strike,
		Premium:        req.Premium,
		Quantity:       req.Quantity,
		IsPurchased:    req.IsPurchased,
		ExpirationDate: req.ExpirationDate.UTC(),
	}, nil
}

type strategyRequest struct {
	Legs []optionRequest `json:"legs" validate:"required,min=1,dive"`
}

type updateOptionRequest struct {
	Strike         *decimal.Decimal `json:"strike"`
	Premium        *decimal.Decimal `json:"premium"`
	Quantity       *int64           `json:"quantity" validate:"omitempty,gt=0"`
	ExpirationDate *time.Time       `json:"expirationDate"`
	Status         *string          `json:"status"`
}

func (req updateOptionRequest) toUpdate() (portfolio.OptionUpdate, error) {
	u := portfolio.OptionUpdate{
		Strike:         req.Strike,
		Premium:        req.Premium,
		Quantity:       req.Quantity,
		ExpirationDate: req.ExpirationDate,
	}
	if req.Status != nil {
		st, err := types.ParseOptionStatus(*req.Status)
		if err != nil {
			return portfolio.OptionUpdate{}, err
		}
		u.Status = &st
	}
	return u, nil
}

type pnlRequest struct {
	Contract     string          `json:"contract" validate:"required,min=3"`
	Direction    string          `json:"direction" validate:"required"`
	Quantity     int64           `json:"quantity" validate:"gte=0,lte=1000000000"`
	EntryPrice   decimal.Decimal `json:"entryPrice"`
	CurrentPrice decimal.Decimal `json:"currentPrice"`
}

type targetPriceRequest struct {
	Contract   string          `json:"contract" validate:"required,min=3"`
	Direction  string          `json:"direction" validate:"required"`
	Quantity   int64           `json:"quantity" validate:"gte=0,lte=1000000000"`
	EntryPrice decimal.Decimal `json:"entryPrice"`
	TargetPnL  decimal.Decimal `json:"targetPnl"`
}

func (req pnlRequest) checkPrices() error {
	if !req.EntryPrice.IsPositive() {
		return fmt.Errorf("entry price %s: %w", req.EntryPrice, types.ErrInvalidPrice)
	}
	if req.CurrentPrice.IsNegative() {
		return fmt.Errorf("current price %s: %w", req.CurrentPrice, types.ErrInvalidPrice)
	}
	return nil
}

func (req targetPriceRequest) checkPrices() error {
	if !req.EntryPrice.IsPositive() {
		return fmt.Errorf("entry price %s: %w", req.EntryPrice, types.ErrInvalidPrice)
	}
	return nil
}

// parseMarks reads mark=SYM:price query values; each value may hold several
// comma separated pairs.
func parseMarks(values []string) (engine.Marks, error) {
	if len(values) == 0 {
		return nil, nil
	}
	marks := engine.Marks{}
	for _, v := range values {
		for _, pair := range strings.Split(v, ",") {
			pair = strings.TrimSpace(pair)
			if pair == "" {
				continue
			}
			sym, raw, ok := strings.Cut(pair, ":")
			if !ok || strings.TrimSpace(sym) == "" {
				return nil, fmt.Errorf("mark %q: want SYMBOL:price: %w", pair, errBadRequest)
			}
			price, err := decimal.NewFromString(strings.TrimSpace(raw))
			if err != nil || !price.IsPositive() {
				return nil, fmt.Errorf("mark %q: %w", pair, types.ErrInvalidPrice)
			}
			marks[strings.ToUpper(strings.TrimSpace(sym))] = price
		}
	}
	return marks, nil
}

// parseRange reads min, max and step. All three are needed to override the
// default range; none means nil.
func parseRange(r *http.Request) (*engine.PriceRange, error) {
	q := r.URL.Query()
	rawMin, rawMax, rawStep := q.Get("min"), q.Get("max"), q.Get("step")
	if rawMin == "" && rawMax == "" && rawStep == "" {
		return nil, nil
	}
	var pr engine.PriceRange
	var err error
	if pr.Min, err = decimal.NewFromString(rawMin); err != nil {
		return nil, fmt.Errorf("min %q: %w", rawMin, engine.ErrInvalidRange)
	}
	if pr.Max, err = decimal.NewFromString(rawMax); err != nil {
		return nil, fmt.Errorf("max %q: %w", rawMax, engine.ErrInvalidRange)
	}
	if pr.Step, err = decimal.NewFromString(rawStep); err != nil {
		return nil, fmt.Errorf("step %q: %w", rawStep, engine.ErrInvalidRange)
	}
	if err := pr.Validate(); err != nil {
		return nil, err
	}
	return &pr, nil
}

const dateLayout = "2006-01-02"

// parseDate accepts RFC 3339 or a plain date. A plain end date covers the
// whole day.
func parseDate(raw string, endOfDay bool) (*time.Time, error) {
	if raw == "" {
		return nil, nil
	}
	if t, err := time.Parse(time.RFC3339, raw); err == nil {
		t = t.UTC()
		return &t, nil
	}
	t, err := time.Parse(dateLayout, raw)
	if err != nil {
		return nil, fmt.Errorf("date %q: %w", raw, errBadRequest)
	}
	if endOfDay {
		t = t.Add(24*time.Hour - time.Millisecond)
	}
	return &t, nil
}

func parseDecimalParam(raw string, fallback decimal.Decimal) (decimal.Decimal, error) {
	if raw == "" {
		return fallback, nil
	}
	v, err := decimal.NewFromString(raw)
	if err != nil {
		return decimal.Zero, fmt.Errorf("number %q: %w", raw, errBadRequest)
	}
	return v, nil
}
