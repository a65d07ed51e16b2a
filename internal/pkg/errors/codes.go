package errors

import "net/http"

var (
	ErrInvalidCoordinates = New(
		"INVALID_COORDINATES",
		"Invalid coordinates provided",
		http.StatusBadRequest,
	)

	ErrInvalidZoneType = New(
		"INVALID_ZONE_TYPE",
		"Invalid zone type: must be safe, risky or restricted",
		http.StatusBadRequest,
	)

	ErrInvalidRadius = New(
		"INVALID_RADIUS",
		"Invalid radius value",
		http.StatusBadRequest,
	)

	ErrZoneNotFound = New(
		"ZONE_NOT_FOUND",
		"Zone not found",
		http.StatusNotFound,
	)

	ErrScoreNotFound = New(
		"SCORE_NOT_FOUND",
		"No score recorded for this tourist",
		http.StatusNotFound,
	)

	ErrInvalidTouristID = New(
		"INVALID_TOURIST_ID",
		"Invalid tourist ID",
		http.StatusBadRequest,
	)

	ErrDatabaseError = New(
		"DATABASE_ERROR",
		"Database operation failed",
		http.StatusInternalServerError,
	)

	ErrInvalidRequest = New(
		"INVALID_REQUEST",
		"Invalid request parameters",
		http.StatusBadRequest,
	)

	ErrInternalServer = New(
		"INTERNAL_SERVER_ERROR",
		"Internal server error",
		http.StatusInternalServerError,
	)
)
