package handlers

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"

	"github.com/geocoder89/bistro/internal/store"
	"github.com/gin-gonic/gin"
)

// BindDocument decodes the request body as a JSON object. An empty body is
// an empty document. On failure it writes a 400 and returns false.
func BindDocument(ctx *gin.Context) (store.Document, bool) {
	var doc store.Document

	err := ctx.ShouldBindJSON(&doc)
	if err != nil && !errors.Is(err, io.EOF) {
		_ = ctx.Error(err)
		RespondBadRequest(ctx, "Invalid request body", parseBindError(err))
		return nil, false
	}

	if doc == nil {
		doc = store.Document{}
	}
	return doc, true
}

func parseBindError(err error) interface{} {
	// in the event of bad json
	var syntaxError *json.SyntaxError
	if errors.As(err, &syntaxError) {
		return gin.H{
			"json":   "invalid_json_syntax",
			"offset": syntaxError.Offset,
		}
	}

	// body is valid JSON but not an object
	var typeError *json.UnmarshalTypeError
	if errors.As(err, &typeError) {
		return gin.H{
			"json":    "invalid_json_type",
			"message": fmt.Sprintf("body must be a JSON object, got %s", typeError.Value),
		}
	}

	var tooLarge *http.MaxBytesError
	if errors.As(err, &tooLarge) {
		return gin.H{
			"json":  "body_too_large",
			"limit": tooLarge.Limit,
		}
	}

	if errors.Is(err, io.ErrUnexpectedEOF) {
		return gin.H{"json": "invalid_json_syntax"}
	}

	// final fallback if the error could not be deciphered
	return gin.H{"reason": err.Error()}
}
