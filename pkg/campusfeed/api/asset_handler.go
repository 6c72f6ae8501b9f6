package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/campushub/campus-feed/pkg/campusfeed"
)

// maxUploadMemory bounds the in-memory portion of multipart parsing;
// larger files spill to temp files.
const maxUploadMemory = 10 << 20

// AssetHandler serves attachment uploads. The upload kind in the URL
// selects the validation policy applied before any byte reaches the
// blob store.
type AssetHandler struct {
	assets *campusfeed.AssetManager
}

// NewAssetHandler creates an asset handler.
func NewAssetHandler(assets *campusfeed.AssetManager) *AssetHandler {
	return &AssetHandler{assets: assets}
}

// Routes returns the asset routes.
func (h *AssetHandler) Routes() chi.Router {
	r := chi.NewRouter()
	r.Post("/{kind}", h.Upload)
	return r
}

func policyFor(kind string) (campusfeed.UploadPolicy, bool) {
	switch kind {
	case "image":
		return campusfeed.ImagePolicy, true
	case "document":
		return campusfeed.DocumentPolicy, true
	case "video":
		return campusfeed.VideoPolicy, true
	}
	return campusfeed.UploadPolicy{}, false
}

type uploadResult struct {
	URL string `json:"url"`
}

// Upload stores a multipart file and returns its public URL. When a
// replace_url form value names an existing attachment, the new file is
// stored first and the old one released afterwards.
func (h *AssetHandler) Upload(w http.ResponseWriter, r *http.Request) {
	policy, ok := policyFor(chi.URLParam(r, "kind"))
	if !ok {
		respondError(w, r, &campusfeed.ValidationError{Field: "kind", Reason: "unknown upload kind"})
		return
	}

	if err := r.ParseMultipartForm(maxUploadMemory); err != nil {
		respondError(w, r, &campusfeed.ValidationError{Field: "body", Reason: err.Error()})
		return
	}

	part, header, err := r.FormFile("file")
	if err != nil {
		respondError(w, r, &campusfeed.ValidationError{Field: "file", Reason: "missing file part"})
		return
	}
	defer part.Close()

	logicalPath := r.FormValue("path")
	if logicalPath == "" {
		respondError(w, r, &campusfeed.ValidationError{Field: "path", Reason: "required"})
		return
	}

	file := campusfeed.File{
		Name:     header.Filename,
		MimeType: header.Header.Get("Content-Type"),
		Size:     header.Size,
		Reader:   part,
	}

	var url string
	if oldURL := r.FormValue("replace_url"); oldURL != "" {
		url, err = h.assets.Replace(r.Context(), oldURL, file, logicalPath, policy)
	} else {
		url, err = h.assets.Upload(r.Context(), file, logicalPath, policy)
	}
	if err != nil {
		respondError(w, r, err)
		return
	}

	respond(w, r, http.StatusCreated, uploadResult{URL: url})
}
