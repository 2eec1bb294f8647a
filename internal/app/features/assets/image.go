package assets

import (
	"bytes"
	"context"
	"encoding/base64"
	"net/http"
	"strings"

	"github.com/dalemusser/learnhub/internal/app/system/apierr"
	"github.com/dalemusser/learnhub/internal/app/system/httpjson"
	"github.com/dalemusser/learnhub/internal/app/system/limits"
	"github.com/dalemusser/learnhub/internal/app/system/objectstore"
	"github.com/dalemusser/learnhub/internal/app/system/timeouts"
	"github.com/dalemusser/learnhub/internal/domain/models"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// decodeImage splits a data URL ("data:image/png;base64,....") or bare
// base64 string into its bytes and declared content type. The declared
// type is empty for bare base64. Data URL parameters are allowed
// ("data:image/png;charset=binary;base64,...") as long as base64 comes last.
func decodeImage(payload string) ([]byte, string, error) {
	payload = strings.TrimSpace(payload)
	declared := ""
	if rest, ok := strings.CutPrefix(payload, "data:"); ok {
		header, data, found := strings.Cut(rest, ",")
		if !found {
			return nil, "", apierr.BadRequest("Malformed data URL.")
		}
		params := strings.Split(header, ";")
		if len(params) < 2 || !strings.EqualFold(strings.TrimSpace(params[len(params)-1]), "base64") {
			return nil, "", apierr.BadRequest("Image must be base64 encoded.")
		}
		declared = strings.TrimSpace(params[0])
		payload = data
	}

	raw, err := base64.StdEncoding.DecodeString(payload)
	if err != nil {
		// Some clients strip the padding.
		raw, err = base64.RawStdEncoding.DecodeString(strings.TrimRight(payload, "="))
	}
	if err != nil || len(raw) == 0 {
		return nil, "", apierr.BadRequest("Image is not valid base64.")
	}
	return raw, declared, nil
}

// HandleUploadImage handles POST /api/upload-image {image}.
func (h *Handler) HandleUploadImage(w http.ResponseWriter, r *http.Request) {
	var in struct {
		Image string `json:"image"`
	}
	if err := httpjson.Decode(w, r, h.MaxImageBytes, &in); err != nil {
		apierr.Write(w, r, h.Log, err)
		return
	}
	if strings.TrimSpace(in.Image) == "" {
		apierr.Write(w, r, h.Log, apierr.BadRequest("No image."))
		return
	}

	raw, declared, err := decodeImage(in.Image)
	if err != nil {
		apierr.Write(w, r, h.Log, err)
		return
	}
	ct, err := objectstore.Resolve(declared, raw)
	if err != nil || !objectstore.IsImage(ct) {
		h.Log.Warn("image upload rejected",
			zap.String("declared", declared),
			zap.String("sniffed", ct))
		apierr.Write(w, r, h.Log, apierr.BadRequest("Upload is not an image."))
		return
	}

	ctx, cancel := timeouts.WithTimeout(r.Context(), timeouts.Upload(), h.Log, "upload image")
	defer cancel()

	ref, err := h.Store.Put(ctx, objectstore.PutInput{
		Key:         uuid.New().String() + "." + objectstore.Extension(ct),
		Body:        bytes.NewReader(raw),
		ContentType: ct,
	})
	if err != nil {
		apierr.Write(w, r, h.Log, storeErr("Image upload", err))
		return
	}

	h.Log.Info("image uploaded",
		zap.String("key", ref.Key),
		zap.String("content_type", ct),
		zap.Int("bytes", len(raw)))
	httpjson.Write(w, http.StatusOK, ref)
}

// HandleRemoveImage handles POST /api/remove-image {image:{Bucket,Key}}.
func (h *Handler) HandleRemoveImage(w http.ResponseWriter, r *http.Request) {
	var in struct {
		Image *models.AssetRef `json:"image"`
	}
	if err := httpjson.Decode(w, r, limits.MaxJSONBody, &in); err != nil {
		apierr.Write(w, r, h.Log, err)
		return
	}
	h.remove(w, r, in.Image, "Image delete")
}

// remove deletes ref and answers {ok:true}, or a single error response.
func (h *Handler) remove(w http.ResponseWriter, r *http.Request, ref *models.AssetRef, op string) {
	if ref == nil || ref.Key == "" {
		apierr.Write(w, r, h.Log, apierr.BadRequest("Object key is required."))
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Medium())
	defer cancel()

	if err := h.Store.Delete(ctx, *ref); err != nil {
		apierr.Write(w, r, h.Log, storeErr(op, err))
		return
	}
	h.Log.Info("object removed", zap.String("bucket", ref.Bucket), zap.String("key", ref.Key))
	httpjson.Write(w, http.StatusOK, httpjson.OK)
}
