package assets

import (
	"errors"
	"io"
	"net/http"

	"github.com/dalemusser/learnhub/internal/app/system/apierr"
	"github.com/dalemusser/learnhub/internal/app/system/authz"
	"github.com/dalemusser/learnhub/internal/app/system/httpjson"
	"github.com/dalemusser/learnhub/internal/app/system/limits"
	"github.com/dalemusser/learnhub/internal/app/system/objectstore"
	"github.com/dalemusser/learnhub/internal/app/system/timeouts"
	"github.com/dalemusser/learnhub/internal/domain/models"
	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// sniffLen is how much of an upload is read for type detection.
const sniffLen = 3072

// HandleUploadVideo handles POST /api/course/video-upload/{instructorId}
// with a multipart "video" file.
func (h *Handler) HandleUploadVideo(w http.ResponseWriter, r *http.Request) {
	if _, err := authz.RequireSelf(r, chi.URLParam(r, "instructorId")); err != nil {
		apierr.Write(w, r, h.Log, err)
		return
	}

	r.Body = http.MaxBytesReader(w, r.Body, h.MaxVideoBytes)
	if err := r.ParseMultipartForm(limits.MultipartMemory); err != nil {
		var tooBig *http.MaxBytesError
		if errors.As(err, &tooBig) {
			apierr.Write(w, r, h.Log, apierr.Wrap(apierr.KindBadRequest, "Video is too large.", err))
			return
		}
		apierr.Write(w, r, h.Log, apierr.Wrap(apierr.KindBadRequest, "Malformed upload.", err))
		return
	}
	defer func() { _ = r.MultipartForm.RemoveAll() }()

	file, header, err := r.FormFile("video")
	if err != nil {
		apierr.Write(w, r, h.Log, apierr.BadRequest("No video."))
		return
	}
	defer file.Close()

	head := make([]byte, sniffLen)
	n, err := io.ReadFull(file, head)
	if err != nil && !errors.Is(err, io.ErrUnexpectedEOF) && !errors.Is(err, io.EOF) {
		apierr.Write(w, r, h.Log, apierr.Wrap(apierr.KindBadRequest, "Malformed upload.", err))
		return
	}
	declared := header.Header.Get("Content-Type")
	ct, err := objectstore.Resolve(declared, head[:n])
	if err != nil || !objectstore.IsVideo(ct) {
		h.Log.Warn("video upload rejected",
			zap.String("declared", declared),
			zap.String("sniffed", ct))
		apierr.Write(w, r, h.Log, apierr.BadRequest("Upload is not a video."))
		return
	}
	if _, err := file.Seek(0, io.SeekStart); err != nil {
		apierr.Write(w, r, h.Log, apierr.Wrap(apierr.KindInternal, "Upload could not be read.", err))
		return
	}

	ctx, cancel := timeouts.WithTimeout(r.Context(), timeouts.Upload(), h.Log, "upload video")
	defer cancel()

	ref, err := h.Store.Put(ctx, objectstore.PutInput{
		Key:         uuid.New().String() + "." + objectstore.Extension(ct),
		Body:        file,
		ContentType: ct,
	})
	if err != nil {
		apierr.Write(w, r, h.Log, storeErr("Video upload", err))
		return
	}

	h.Log.Info("video uploaded",
		zap.String("key", ref.Key),
		zap.String("content_type", ct),
		zap.Int64("bytes", header.Size))
	httpjson.Write(w, http.StatusOK, ref)
}

// HandleRemoveVideo handles POST /api/course/video-remove/{instructorId}
// with the descriptor {Bucket, Key} as the body.
func (h *Handler) HandleRemoveVideo(w http.ResponseWriter, r *http.Request) {
	if _, err := authz.RequireSelf(r, chi.URLParam(r, "instructorId")); err != nil {
		apierr.Write(w, r, h.Log, err)
		return
	}

	var ref models.AssetRef
	if err := httpjson.Decode(w, r, limits.MaxJSONBody, &ref); err != nil {
		apierr.Write(w, r, h.Log, err)
		return
	}
	h.remove(w, r, &ref, "Video delete")
}
