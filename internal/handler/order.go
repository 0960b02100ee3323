package handler

import (
	"net/http"

	"github.com/go-faster/errors"
	"github.com/go-faster/jx"

	"github.com/xenking/store-inventory/internal/domain/order"
	"github.com/xenking/store-inventory/internal/domain/product"
	"github.com/xenking/store-inventory/internal/domain/store"
)

// PlaceOrder decodes {"items":[{"productId","quantity"}]}, runs the order and
// responds with {"id","total","items"}.
func (h *Handler) PlaceOrder(w http.ResponseWriter, r *http.Request) {
	req, err := decodeOrderRequest(jx.Decode(http.MaxBytesReader(w, r.Body, maxBodyBytes), 1024))
	if err != nil {
		writeError(w, r, err)
		return
	}

	result, err := h.orders.PlaceOrder(r.Context(), req)
	if err != nil {
		writeError(w, r, mapOrderError(err))
		return
	}

	var e jx.Encoder
	e.Obj(func(e *jx.Encoder) {
		e.Field("id", func(e *jx.Encoder) { e.Str(result.Order.ID) })
		e.Field("total", func(e *jx.Encoder) { e.Num(jx.Num(result.Order.Total.String())) })
		e.Field("items", func(e *jx.Encoder) {
			e.Arr(func(e *jx.Encoder) {
				for _, item := range result.Order.Items {
					e.Obj(func(e *jx.Encoder) {
						e.Field("productId", func(e *jx.Encoder) { e.Str(item.ProductID) })
						e.Field("quantity", func(e *jx.Encoder) { e.Int(item.Quantity) })
					})
				}
			})
		})
		e.Field("products", func(e *jx.Encoder) {
			e.Arr(func(e *jx.Encoder) {
				for _, v := range result.Products {
					encodeProduct(e, v)
				}
			})
		})
	})
	writeJSON(w, http.StatusOK, &e)
}

func decodeOrderRequest(d *jx.Decoder) (order.PlaceOrderRequest, error) {
	var req order.PlaceOrderRequest
	err := d.Obj(func(d *jx.Decoder, key string) error {
		if key != "items" {
			return d.Skip()
		}
		return d.Arr(func(d *jx.Decoder) error {
			var item order.OrderItem
			if err := d.Obj(func(d *jx.Decoder, key string) error {
				var err error
				switch key {
				case "productId":
					item.ProductID, err = d.Str()
				case "quantity":
					item.Quantity, err = d.Int()
				default:
					err = d.Skip()
				}
				return err
			}); err != nil {
				return err
			}
			req.Items = append(req.Items, item)
			return nil
		})
	})
	if err != nil {
		return req, badRequest("malformed order: " + err.Error())
	}
	return req, nil
}

// mapOrderError converts domain errors to API errors. Failures after the
// order started are still client errors; the stock already taken by earlier
// lines is not returned.
func mapOrderError(err error) error {
	if errors.Is(err, order.ErrEmptyItems) {
		return badRequest(err.Error())
	}

	var pnfErr *order.ProductNotFoundError
	switch {
	case errors.Is(err, order.ErrInvalidQuantity),
		errors.As(err, &pnfErr),
		errors.Is(err, store.ErrProductUnavailable),
		errors.Is(err, product.ErrInsufficientStock),
		errors.Is(err, product.ErrOrderLimitExceeded),
		errors.Is(err, product.ErrInvalidArgument):
		return unprocessable(err)
	}
	return err
}
