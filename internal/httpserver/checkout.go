package httpserver

import (
	"errors"
	"io"
	"net/http"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"

	"github.com/printyshop/printy/internal/authctx"
	"github.com/printyshop/printy/internal/catalog"
	"github.com/printyshop/printy/internal/checkout"
	"github.com/printyshop/printy/internal/events"
	"github.com/printyshop/printy/internal/logging"
	"github.com/printyshop/printy/internal/payment"
	"github.com/printyshop/printy/internal/storage"
)

type CheckoutHandler struct {
	Registry *checkout.Registry
	Orch     *checkout.Orchestrator
	Products *catalog.GormRepo
	Uploader *storage.DesignUploader
	Razorpay *payment.RazorpayProvider
	Producer *events.Producer
}

func checkoutHTTPError(err error) error {
	switch {
	case errors.Is(err, checkout.ErrNotFound):
		return echo.NewHTTPError(http.StatusNotFound, "session not found")
	case errors.Is(err, checkout.ErrPaymentInFlight), errors.Is(err, checkout.ErrNoPaymentInFlight):
		return echo.NewHTTPError(http.StatusConflict, err.Error())
	case errors.Is(err, checkout.ErrPersistence):
		// Payment is already captured; this must read differently from a
		// retryable failure.
		return echo.NewHTTPError(http.StatusInternalServerError,
			"your payment was received but the order could not be recorded; please contact support")
	case errors.Is(err, checkout.ErrValidation):
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	case errors.Is(err, payment.ErrProvider):
		return echo.NewHTTPError(http.StatusBadGateway, err.Error())
	case errors.Is(err, storage.ErrFileTooLarge):
		return echo.NewHTTPError(http.StatusRequestEntityTooLarge, "file size should be less than 5MB")
	case errors.Is(err, storage.ErrUploadInFlight):
		return echo.NewHTTPError(http.StatusConflict, "upload already in progress")
	}
	return echo.NewHTTPError(http.StatusInternalServerError, "internal error")
}

func (h *CheckoutHandler) session(c echo.Context) (*checkout.Session, error) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return nil, echo.NewHTTPError(http.StatusBadRequest, "invalid session id")
	}
	sess, err := h.Registry.Get(id)
	if err != nil {
		return nil, checkoutHTTPError(err)
	}
	return sess, nil
}

func (h *CheckoutHandler) CreateSession(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "checkout.create_session")

	var req struct {
		ProductID uuid.UUID `json:"product_id"`
	}
	if err := c.Bind(&req); err != nil || req.ProductID == uuid.Nil {
		return echo.NewHTTPError(http.StatusBadRequest, "product_id required")
	}

	product, err := h.Products.GetProduct(ctx, req.ProductID)
	if err != nil {
		if errors.Is(err, catalog.ErrNotFound) {
			return echo.NewHTTPError(http.StatusNotFound, "product not found")
		}
		return echo.NewHTTPError(http.StatusInternalServerError, "internal error")
	}

	sess, err := h.Registry.Create(product, authctx.CurrentUser(c))
	if err != nil {
		return checkoutHTTPError(err)
	}

	l.Info("session_created", "session_id", sess.ID, "product_id", product.ID)
	return c.JSON(http.StatusCreated, sess.Snapshot())
}

func (h *CheckoutHandler) GetSession(c echo.Context) error {
	sess, err := h.session(c)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, sess.Snapshot())
}

func (h *CheckoutHandler) AbandonSession(c echo.Context) error {
	sess, err := h.session(c)
	if err != nil {
		return err
	}
	h.Registry.Delete(sess.ID)
	return c.NoContent(http.StatusNoContent)
}

func (h *CheckoutHandler) SelectColor(c echo.Context) error {
	return h.mutate(c, func(sess *checkout.Session) error {
		var req struct {
			Color string `json:"color"`
		}
		if err := c.Bind(&req); err != nil {
			return echo.NewHTTPError(http.StatusBadRequest, "invalid body")
		}
		return sess.SelectColor(req.Color)
	})
}

func (h *CheckoutHandler) SelectSize(c echo.Context) error {
	return h.mutate(c, func(sess *checkout.Session) error {
		var req struct {
			Size string `json:"size"`
		}
		if err := c.Bind(&req); err != nil {
			return echo.NewHTTPError(http.StatusBadRequest, "invalid body")
		}
		return sess.SelectSize(req.Size)
	})
}

func (h *CheckoutHandler) AdjustQuantity(c echo.Context) error {
	return h.mutate(c, func(sess *checkout.Session) error {
		var req struct {
			Delta int `json:"delta"`
		}
		if err := c.Bind(&req); err != nil {
			return echo.NewHTTPError(http.StatusBadRequest, "invalid body")
		}
		return sess.AdjustQuantity(req.Delta)
	})
}

func (h *CheckoutHandler) AdjustPlacement(c echo.Context) error {
	return h.mutate(c, func(sess *checkout.Session) error {
		var req struct {
			DX int `json:"dx"`
			DY int `json:"dy"`
		}
		if err := c.Bind(&req); err != nil {
			return echo.NewHTTPError(http.StatusBadRequest, "invalid body")
		}
		return sess.AdjustPlacement(req.DX, req.DY)
	})
}

func (h *CheckoutHandler) AdjustScale(c echo.Context) error {
	return h.mutate(c, func(sess *checkout.Session) error {
		var req struct {
			Delta int `json:"delta"`
		}
		if err := c.Bind(&req); err != nil {
			return echo.NewHTTPError(http.StatusBadRequest, "invalid body")
		}
		return sess.AdjustScale(req.Delta)
	})
}

func (h *CheckoutHandler) SetInstructions(c echo.Context) error {
	return h.mutate(c, func(sess *checkout.Session) error {
		var req struct {
			Instructions string `json:"instructions"`
		}
		if err := c.Bind(&req); err != nil {
			return echo.NewHTTPError(http.StatusBadRequest, "invalid body")
		}
		return sess.SetInstructions(req.Instructions)
	})
}

func (h *CheckoutHandler) mutate(c echo.Context, fn func(*checkout.Session) error) error {
	sess, err := h.session(c)
	if err != nil {
		return err
	}
	if err := fn(sess); err != nil {
		var httpErr *echo.HTTPError
		if errors.As(err, &httpErr) {
			return err
		}
		return checkoutHTTPError(err)
	}
	return c.JSON(http.StatusOK, sess.Snapshot())
}

// UploadDesign accepts the multipart design image. The size gate runs on the
// declared header size, before the file is read or any storage call is made.
func (h *CheckoutHandler) UploadDesign(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "checkout.upload_design")

	sess, err := h.session(c)
	if err != nil {
		return err
	}

	fh, err := c.FormFile("design")
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "design file required")
	}
	if fh.Size > storage.MaxDesignSize {
		return checkoutHTTPError(storage.ErrFileTooLarge)
	}

	f, err := fh.Open()
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "cannot read design file")
	}
	defer f.Close()

	data, err := io.ReadAll(f)
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "cannot read design file")
	}

	url, err := h.Uploader.Upload(ctx, fh.Filename, data, fh.Header.Get("Content-Type"))
	if err != nil {
		l.Warn("upload_error", "session_id", sess.ID, "error", err)
		return checkoutHTTPError(err)
	}

	if err := sess.SetDesign(url); err != nil {
		return checkoutHTTPError(err)
	}

	publish(c, h.Producer, events.TopicUploadEvents, map[string]interface{}{
		"type":      "design_uploaded",
		"sessionID": sess.ID,
		"url":       url,
	})

	l.Info("design_uploaded", "session_id", sess.ID)
	return c.JSON(http.StatusOK, sess.Snapshot())
}

func (h *CheckoutHandler) Proceed(c echo.Context) error {
	sess, err := h.session(c)
	if err != nil {
		return err
	}
	if err := h.Orch.ProceedToCheckout(sess); err != nil {
		return checkoutHTTPError(err)
	}
	return c.JSON(http.StatusOK, sess.Snapshot())
}

func (h *CheckoutHandler) SubmitCustomer(c echo.Context) error {
	sess, err := h.session(c)
	if err != nil {
		return err
	}

	var info checkout.CustomerInfo
	if err := c.Bind(&info); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid body")
	}
	if err := h.Orch.SubmitCustomerInfo(sess, info); err != nil {
		return checkoutHTTPError(err)
	}
	return c.JSON(http.StatusOK, sess.Snapshot())
}

func (h *CheckoutHandler) StartPayment(c echo.Context) error {
	ctx := c.Request().Context()
	sess, err := h.session(c)
	if err != nil {
		return err
	}

	var req struct {
		Method string `json:"method"`
	}
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid body")
	}
	method, err := payment.ParseMethod(req.Method)
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}

	defer h.Registry.Release(sess)

	gw, err := h.Orch.StartPayment(ctx, sess, method)
	if err != nil {
		return checkoutHTTPError(err)
	}

	if view := sess.Snapshot(); view.State == checkout.StateFulfilled {
		h.publishOrderCreated(c, sess)
	}

	return c.JSON(http.StatusOK, map[string]interface{}{
		"gateway": gw,
		"session": sess.Snapshot(),
	})
}

type callbackRequest struct {
	Status            string `json:"status"`
	RazorpayPaymentID string `json:"razorpay_payment_id"`
	RazorpayOrderID   string `json:"razorpay_order_id"`
	RazorpaySignature string `json:"razorpay_signature"`
	Description       string `json:"description"`
}

// PaymentCallback receives the single asynchronous outcome of a hosted-gateway
// attempt.
func (h *CheckoutHandler) PaymentCallback(c echo.Context) error {
	ctx := c.Request().Context()
	sess, err := h.session(c)
	if err != nil {
		return err
	}

	var req callbackRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid body")
	}

	var outcome payment.Outcome
	switch req.Status {
	case "success":
		outcome = h.Razorpay.NormalizeSuccess(req.RazorpayOrderID, req.RazorpayPaymentID, req.RazorpaySignature)
	case "failure":
		outcome = payment.Outcome{Kind: payment.OutcomeFailure, Description: req.Description}
	default:
		return echo.NewHTTPError(http.StatusBadRequest, "unknown callback status")
	}

	defer h.Registry.Release(sess)

	if err := h.Orch.CompletePayment(ctx, sess, outcome); err != nil {
		return checkoutHTTPError(err)
	}

	if view := sess.Snapshot(); view.State == checkout.StateFulfilled {
		h.publishOrderCreated(c, sess)
	}

	return c.JSON(http.StatusOK, sess.Snapshot())
}

// CancelPayment handles the user dismissing the payment UI before any
// callback fired.
func (h *CheckoutHandler) CancelPayment(c echo.Context) error {
	sess, err := h.session(c)
	if err != nil {
		return err
	}
	if err := h.Orch.CancelPayment(c.Request().Context(), sess); err != nil {
		return checkoutHTTPError(err)
	}
	return c.JSON(http.StatusOK, sess.Snapshot())
}

func (h *CheckoutHandler) publishOrderCreated(c echo.Context, sess *checkout.Session) {
	view := sess.Snapshot()
	publish(c, h.Producer, events.TopicOrderEvents, map[string]interface{}{
		"type":        "order_created",
		"sessionID":   sess.ID,
		"orderNumber": view.OrderNumber,
	})
}
