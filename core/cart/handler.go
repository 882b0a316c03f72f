package cart

import (
	"context"
	"errors"
	"net/http"

	"github.com/storely/storefront/api/web"
	"github.com/storely/storefront/api/weberr"
	"github.com/storely/storefront/validate"
)

// HandleShow returns the aggregated cart for the cartId query parameter.
func HandleShow(store Store) web.Handler {
	return func(ctx context.Context, w http.ResponseWriter, r *http.Request) error {
		cartID := web.Query(r, "cartId")
		if cartID == "" {
			err := errors.New("cartId is required")
			return weberr.NewError(err, err.Error(), http.StatusBadRequest)
		}
		if err := validate.CheckID(cartID); err != nil {
			return weberr.NewError(err, err.Error(), http.StatusBadRequest)
		}

		lines, err := store.Lines(ctx, cartID)
		if err != nil {
			return err
		}

		resp := struct {
			Cart []Line `json:"cart"`
		}{
			Cart: lines,
		}
		return web.Respond(ctx, w, resp, http.StatusOK)
	}
}

// HandleNewID mints a fresh cart id for clients that do not hold one yet.
// The id lives in client storage afterwards; the server keeps no record.
func HandleNewID() web.Handler {
	return func(ctx context.Context, w http.ResponseWriter, r *http.Request) error {
		resp := struct {
			CartID string `json:"cartId"`
		}{
			CartID: validate.GenerateID(),
		}
		return web.Respond(ctx, w, resp, http.StatusOK)
	}
}

func HandleAddLine(store Store) web.Handler {
	return func(ctx context.Context, w http.ResponseWriter, r *http.Request) error {
		var line LineNew
		if err := web.Decode(w, r, &line); err != nil {
			return weberr.BadRequest(err)
		}

		if err := validate.Check(line); err != nil {
			return weberr.NewError(err, err.Error(), http.StatusBadRequest)
		}
		if err := checkIDs(line.CartID, line.ProductID); err != nil {
			return err
		}

		if err := store.AddLine(ctx, line.CartID, line.ProductID, line.Quantity); err != nil {
			return err
		}

		return web.Respond(ctx, w, nil, http.StatusNoContent)
	}
}

func HandleUpdateLine(store Store) web.Handler {
	return func(ctx context.Context, w http.ResponseWriter, r *http.Request) error {
		var line LineUp
		if err := web.Decode(w, r, &line); err != nil {
			return weberr.BadRequest(err)
		}

		if err := validate.Check(line); err != nil {
			return weberr.NewError(err, err.Error(), http.StatusBadRequest)
		}
		if err := checkIDs(line.CartID, line.ProductID); err != nil {
			return err
		}

		// Quantities never drop below 1 through an update; removal is an
		// explicit delete.
		if line.Quantity < 1 {
			line.Quantity = 1
		}

		if err := store.SetQuantity(ctx, line.CartID, line.ProductID, line.Quantity); err != nil {
			return err
		}

		return web.Respond(ctx, w, nil, http.StatusNoContent)
	}
}

func HandleDeleteLine(store Store) web.Handler {
	return func(ctx context.Context, w http.ResponseWriter, r *http.Request) error {
		var line LineDelete
		if err := web.Decode(w, r, &line); err != nil {
			return weberr.BadRequest(err)
		}

		if err := validate.Check(line); err != nil {
			return weberr.NewError(err, err.Error(), http.StatusBadRequest)
		}
		if err := checkIDs(line.CartID, line.ProductID); err != nil {
			return err
		}

		if err := store.DeleteLine(ctx, line.CartID, line.ProductID); err != nil {
			return err
		}

		return web.Respond(ctx, w, nil, http.StatusNoContent)
	}
}

func HandleEmpty(store Store) web.Handler {
	return func(ctx context.Context, w http.ResponseWriter, r *http.Request) error {
		var body CartEmpty
		if err := web.Decode(w, r, &body); err != nil {
			return weberr.BadRequest(err)
		}

		if err := validate.Check(body); err != nil {
			return weberr.NewError(err, err.Error(), http.StatusBadRequest)
		}
		if err := validate.CheckID(body.CartID); err != nil {
			return weberr.NewError(err, err.Error(), http.StatusBadRequest)
		}

		if err := store.Empty(ctx, body.CartID); err != nil {
			return err
		}

		return web.Respond(ctx, w, nil, http.StatusNoContent)
	}
}

func checkIDs(cartID, productID string) error {
	if err := validate.CheckID(cartID); err != nil {
		return weberr.NewError(err, "cartId is not in its proper form", http.StatusBadRequest)
	}
	if err := validate.CheckID(productID); err != nil {
		return weberr.NewError(err, "productId is not in its proper form", http.StatusBadRequest)
	}
	return nil
}
