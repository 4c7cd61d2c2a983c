package httputil

import (
	"io"
	"net/http"

	errs "github.com/matzehuels/modkit/pkg/errors"
	"github.com/matzehuels/modkit/pkg/json"
)

// MaxBodySize bounds request bodies read by [ReadBody].
const MaxBodySize = 1 << 20

// WriteJSON writes v as a pretty-printed JSON response with the given status.
func WriteJSON(w http.ResponseWriter, status int, v any) error {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	jw := json.NewWriter(w, true)
	jw.Write(v)
	if err := jw.Flush(); err != nil {
		return err
	}
	_, err := io.WriteString(w, "\n")
	return err
}

// errorBody is the JSON shape of an error response.
type errorBody struct {
	code string
	msg  string
}

func (b errorBody) Serialize(w *json.Writer) {
	w.StartObject()
	w.MemberValue("error", b.msg)
	if b.code != "" {
		w.MemberValue("code", b.code)
	}
	w.EndObject()
}

// WriteError writes err as {"error": ..., "code": ...} with the status
// from [StatusFor].
func WriteError(w http.ResponseWriter, err error) error {
	return WriteJSON(w, StatusFor(err), errorBody{
		code: string(errs.GetCode(err)),
		msg:  errs.UserMessage(err),
	})
}

// StatusFor maps an error code to an HTTP status.
func StatusFor(err error) int {
	switch errs.GetCode(err) {
	case errs.ErrCodeNotFound, errs.ErrCodeModNotFound, errs.ErrCodeFileNotFound:
		return http.StatusNotFound
	case errs.ErrCodeInvalidInput, errs.ErrCodeInvalidModID,
		errs.ErrCodeSyntax, errs.ErrCodeShape, errs.ErrCodeRange, errs.ErrCodePolicy:
		return http.StatusBadRequest
	case errs.ErrCodeGraph:
		return http.StatusUnprocessableEntity
	default:
		return http.StatusInternalServerError
	}
}

// ReadBody reads at most [MaxBodySize] bytes of the request body.
func ReadBody(w http.ResponseWriter, r *http.Request) ([]byte, error) {
	data, err := io.ReadAll(http.MaxBytesReader(w, r.Body, MaxBodySize))
	if err != nil {
		return nil, errs.Wrap(errs.ErrCodeInvalidInput, err, "read request body")
	}
	return data, nil
}
