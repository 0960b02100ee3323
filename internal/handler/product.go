package handler

import (
	"net/http"

	"github.com/go-faster/errors"
	"github.com/go-faster/jx"
	"github.com/shopspring/decimal"

	"github.com/xenking/store-inventory/internal/domain/product"
	"github.com/xenking/store-inventory/internal/domain/promotion"
	"github.com/xenking/store-inventory/internal/domain/store"
)

// ListProducts returns the active products in store order.
func (h *Handler) ListProducts(w http.ResponseWriter, _ *http.Request) {
	var e jx.Encoder
	e.Arr(func(e *jx.Encoder) {
		for _, v := range h.store.Views() {
			encodeProduct(e, v)
		}
	})
	writeJSON(w, http.StatusOK, &e)
}

// GetProduct returns one product by id, active or not.
func (h *Handler) GetProduct(w http.ResponseWriter, r *http.Request) {
	v, err := h.store.ViewByID(r.PathValue("id"))
	if err != nil {
		writeError(w, r, storeError(err))
		return
	}

	var e jx.Encoder
	encodeProduct(&e, v)
	writeJSON(w, http.StatusOK, &e)
}

// TotalQuantity returns {"total": n}.
func (h *Handler) TotalQuantity(w http.ResponseWriter, _ *http.Request) {
	var e jx.Encoder
	e.Obj(func(e *jx.Encoder) {
		e.Field("total", func(e *jx.Encoder) { e.Int(h.store.TotalQuantity()) })
	})
	writeJSON(w, http.StatusOK, &e)
}

// SetPromotion attaches a new promotion described by the body to the product.
func (h *Handler) SetPromotion(w http.ResponseWriter, r *http.Request) {
	p, err := h.lookup(r)
	if err != nil {
		writeError(w, r, err)
		return
	}

	promo, err := decodePromotion(jx.Decode(http.MaxBytesReader(w, r.Body, maxBodyBytes), 512))
	if err != nil {
		writeError(w, r, err)
		return
	}
	if err := h.store.AddPromotion(p, promo); err != nil {
		writeError(w, r, storeError(err))
		return
	}
	v, err := h.store.ViewOf(p)
	if err != nil {
		writeError(w, r, storeError(err))
		return
	}

	var e jx.Encoder
	encodeProduct(&e, v)
	writeJSON(w, http.StatusOK, &e)
}

// RemovePromotion detaches the product's promotion, if any.
func (h *Handler) RemovePromotion(w http.ResponseWriter, r *http.Request) {
	p, err := h.lookup(r)
	if err != nil {
		writeError(w, r, err)
		return
	}
	if err := h.store.RemovePromotion(p); err != nil {
		writeError(w, r, storeError(err))
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) lookup(r *http.Request) (product.Product, error) {
	p, err := h.store.Lookup(r.PathValue("id"))
	if err != nil {
		return nil, storeError(err)
	}
	return p, nil
}

func storeError(err error) error {
	if errors.Is(err, store.ErrNotFound) {
		return notFound("product not found")
	}
	return errors.Wrap(err, "store")
}

// decodePromotion reads {"kind","name","percent"}. Percent may be a JSON
// number or a numeric string.
func decodePromotion(d *jx.Decoder) (promotion.Promotion, error) {
	var (
		kind    promotion.Kind
		name    string
		percent = decimal.Zero
	)
	err := d.Obj(func(d *jx.Decoder, key string) error {
		switch key {
		case "kind":
			v, err := d.Str()
			kind = promotion.Kind(v)
			return err
		case "name":
			v, err := d.Str()
			name = v
			return err
		case "percent":
			raw, err := decodeNumber(d)
			if err != nil {
				return err
			}
			percent, err = decimal.NewFromString(raw)
			return err
		default:
			return d.Skip()
		}
	})
	if err != nil {
		return nil, badRequest("malformed promotion: " + err.Error())
	}

	promo, err := promotion.New(kind, name, percent)
	if err != nil {
		return nil, unprocessable(err)
	}
	return promo, nil
}

func decodeNumber(d *jx.Decoder) (string, error) {
	if d.Next() == jx.String {
		return d.Str()
	}
	num, err := d.Num()
	if err != nil {
		return "", err
	}
	return num.String(), nil
}

func encodeProduct(e *jx.Encoder, v product.View) {
	e.Obj(func(e *jx.Encoder) {
		e.Field("id", func(e *jx.Encoder) { e.Str(v.ID) })
		e.Field("name", func(e *jx.Encoder) { e.Str(v.Name) })
		e.Field("type", func(e *jx.Encoder) { e.Str(string(v.Kind)) })
		e.Field("price", func(e *jx.Encoder) { e.Num(jx.Num(v.Price.String())) })
		e.Field("quantity", func(e *jx.Encoder) { e.Int(v.Quantity) })
		e.Field("active", func(e *jx.Encoder) { e.Bool(v.Active) })
		if v.Kind == product.KindLimited {
			e.Field("maxPerOrder", func(e *jx.Encoder) { e.Int(v.MaxPerOrder) })
		}
		e.Field("promotion", func(e *jx.Encoder) {
			if v.Promotion == nil {
				e.Null()
				return
			}
			encodePromotion(e, v.Promotion)
		})
		e.Field("description", func(e *jx.Encoder) { e.Str(v.Description) })
	})
}

func encodePromotion(e *jx.Encoder, promo promotion.Promotion) {
	e.Obj(func(e *jx.Encoder) {
		e.Field("kind", func(e *jx.Encoder) { e.Str(string(promo.Kind())) })
		e.Field("name", func(e *jx.Encoder) { e.Str(promo.Name()) })
		if pd, ok := promo.(*promotion.PercentDiscount); ok {
			e.Field("percent", func(e *jx.Encoder) { e.Num(jx.Num(pd.Percent().String())) })
		}
	})
}
