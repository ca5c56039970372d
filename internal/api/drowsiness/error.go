package drowsiness

import (
	"WakeGuard/pkg/response"
	"net/http"
)

var (
	ErrDegenerateGeometry  = response.NewError(http.StatusUnprocessableEntity, "degenerate landmark geometry")
	ErrInvalidPointCount   = response.NewError(http.StatusUnprocessableEntity, "unexpected landmark point count")
	ErrUnevaluableFace     = response.NewError(http.StatusUnprocessableEntity, "face could not be evaluated")
	ErrStatusNotReady      = response.NewError(http.StatusServiceUnavailable, "no frame has been processed yet")
	ErrAlertNotFound       = response.NewError(http.StatusNotFound, "alert event not found")
	ErrCameraExhausted     = response.NewError(http.StatusServiceUnavailable, "camera stopped delivering frames")
	ErrEmptyFrame          = response.NewError(http.StatusUnprocessableEntity, "empty frame")
	ErrFrameUnavailable    = response.NewError(http.StatusServiceUnavailable, "frame could not be read")
	ErrLandmarksOffline    = response.NewError(http.StatusServiceUnavailable, "landmark model not loaded")
	ErrInternalServerError = response.NewError(http.StatusInternalServerError, "internal server error")
)
