package controllers

import (
	"errors"
	"io"
	"mime"
	"mime/multipart"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/cppla/fileupload/models"
	"github.com/cppla/fileupload/storage"
	"github.com/cppla/fileupload/utils"
)

// UploadField is the multipart field carrying uploaded files. It may repeat.
const UploadField = "files"

const maxNameAttempts = 1000

// FileController serves upload, listing, download and delete of stored files.
type FileController struct {
	store          storage.Store
	journal        storage.Journal
	maxUploadBytes int64
	now            func() time.Time
}

// NewFileController creates a FileController. A nil journal disables metadata mirroring;
// a non-positive maxUploadBytes leaves request bodies unbounded.
func NewFileController(store storage.Store, journal storage.Journal, maxUploadBytes int64) *FileController {
	if journal == nil {
		journal = storage.NopJournal{}
	}
	return &FileController{
		store:          store,
		journal:        journal,
		maxUploadBytes: maxUploadBytes,
		now:            time.Now,
	}
}

// Banner answers the liveness probe at "/".
func (f *FileController) Banner(ctx *gin.Context) {
	ctx.String(http.StatusOK, "File Upload Manager API Running")
}

// Upload stores every part of the "files" field in order. Parts already written stay
// stored when a later one fails.
func (f *FileController) Upload(ctx *gin.Context) {
	if f.maxUploadBytes > 0 {
		ctx.Request.Body = http.MaxBytesReader(ctx.Writer, ctx.Request.Body, f.maxUploadBytes)
	}

	form, err := ctx.MultipartForm()
	if err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			utils.Fail(ctx, http.StatusRequestEntityTooLarge, "Upload too large", err)
			return
		}
		utils.Sugar.Infof("no files received: %v", err)
		utils.Fail(ctx, http.StatusBadRequest, "No files uploaded", nil)
		return
	}

	headers := form.File[UploadField]
	if len(headers) == 0 {
		utils.Sugar.Info("no files received")
		utils.Fail(ctx, http.StatusBadRequest, "No files uploaded", nil)
		return
	}

	files := make([]models.UploadedFile, 0, len(headers))
	for _, header := range headers {
		uploaded, err := f.savePart(ctx, header)
		if err != nil {
			utils.Sugar.Errorw("upload failed", "original", header.Filename, "stored", len(files), "error", err)
			utils.Fail(ctx, http.StatusInternalServerError, "Failed to upload files", err)
			return
		}
		files = append(files, uploaded)
	}

	names := make([]string, len(files))
	for i, file := range files {
		names[i] = file.Filename
	}
	utils.Sugar.Infow("files received", "files", names)

	ctx.JSON(http.StatusOK, models.UploadResponse{
		Message: "Files uploaded successfully",
		Files:   files,
	})
}

func (f *FileController) savePart(ctx *gin.Context, header *multipart.FileHeader) (models.UploadedFile, error) {
	src, err := header.Open()
	if err != nil {
		return models.UploadedFile{}, err
	}
	defer src.Close()

	contentType := header.Header.Get("Content-Type")
	stamp := f.now()

	// A taken name moves the stamp one millisecond forward.
	var name string
	var written int64
	for attempt := 0; ; attempt++ {
		name = utils.StoredName(stamp, header.Filename)
		written, err = f.store.Put(ctx.Request.Context(), name, src, contentType)
		if !errors.Is(err, storage.ErrExists) || attempt == maxNameAttempts-1 {
			break
		}
		if _, err := src.Seek(0, io.SeekStart); err != nil {
			return models.UploadedFile{}, err
		}
		stamp = stamp.Add(time.Millisecond)
	}
	if err != nil {
		return models.UploadedFile{}, err
	}

	// Journal failures never fail the upload.
	if err := f.journal.Record(ctx.Request.Context(), &models.FileMeta{
		OriginalName: header.Filename,
		Filename:     name,
		MimeType:     contentType,
		Size:         written,
	}); err != nil {
		utils.Sugar.Warnw("journal record failed", "filename", name, "error", err)
	}

	return models.UploadedFile{
		Filename:   name,
		Path:       models.PublicPath(name),
		Size:       written,
		MimeType:   contentType,
		UploadedAt: f.now(),
	}, nil
}

// List returns every stored file in backend enumeration order.
func (f *FileController) List(ctx *gin.Context) {
	objects, err := f.store.List(ctx.Request.Context())
	if err != nil {
		utils.Sugar.Errorw("error fetching files", "error", err)
		utils.Fail(ctx, http.StatusInternalServerError, "Failed to fetch files", err)
		return
	}

	list := make([]models.StoredFile, 0, len(objects))
	for _, obj := range objects {
		list = append(list, models.StoredFile{
			Filename:   obj.Name,
			Path:       models.PublicPath(obj.Name),
			Size:       obj.Size,
			UploadedAt: obj.CreatedAt,
		})
	}
	ctx.JSON(http.StatusOK, list)
}

// Download sends the named file as an attachment.
func (f *FileController) Download(ctx *gin.Context) {
	name := ctx.Param("filename")
	utils.Sugar.Infof("downloading file: %s", name)
	f.send(ctx, name, true)
}

// Serve sends the named file inline; it backs the /uploads static route.
func (f *FileController) Serve(ctx *gin.Context) {
	f.send(ctx, ctx.Param("filename"), false)
}

func (f *FileController) send(ctx *gin.Context, name string, attachment bool) {
	body, obj, err := f.store.Open(ctx.Request.Context(), name)
	if err != nil {
		f.readFailed(ctx, name, err)
		return
	}
	defer body.Close()

	if attachment {
		ctx.Header("Content-Disposition", mime.FormatMediaType("attachment", map[string]string{"filename": name}))
	}

	// Seekable bodies get range and conditional request support.
	if rs, ok := body.(io.ReadSeeker); ok {
		if obj.ContentType != "" {
			ctx.Header("Content-Type", obj.ContentType)
		}
		http.ServeContent(ctx.Writer, ctx.Request, name, obj.CreatedAt, rs)
		return
	}

	contentType := obj.ContentType
	if contentType == "" {
		contentType = "application/octet-stream"
	}
	ctx.DataFromReader(http.StatusOK, obj.Size, contentType, body, nil)
}

func (f *FileController) readFailed(ctx *gin.Context, name string, err error) {
	switch {
	case errors.Is(err, storage.ErrNotFound):
		utils.NotFound(ctx)
	case errors.Is(err, storage.ErrInvalidName):
		ctx.String(http.StatusBadRequest, "Invalid filename")
	default:
		utils.Sugar.Errorw("read failed", "filename", name, "error", err)
		utils.Fail(ctx, http.StatusInternalServerError, "Failed to read file", err)
	}
}

// Delete removes the named file permanently.
func (f *FileController) Delete(ctx *gin.Context) {
	name := ctx.Param("filename")
	reqCtx := ctx.Request.Context()

	if _, err := f.store.Stat(reqCtx, name); err != nil {
		f.readFailed(ctx, name, err)
		return
	}

	if err := f.store.Delete(reqCtx, name); err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			utils.NotFound(ctx)
			return
		}
		utils.Sugar.Errorw("delete failed", "filename", name, "error", err)
		utils.Fail(ctx, http.StatusInternalServerError, "Failed to delete file", err)
		return
	}

	if err := f.journal.Forget(reqCtx, name); err != nil {
		utils.Sugar.Warnw("journal forget failed", "filename", name, "error", err)
	}

	utils.Sugar.Infof("deleted file: %s", name)
	utils.Message(ctx, http.StatusOK, "File deleted successfully")
}
