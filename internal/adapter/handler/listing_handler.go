package handler

import (
	"encoding/json"
	"fmt"
	"io"
	"mime"
	"mime/multipart"
	"net/http"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/kimamovic21/real-estate-marketplace/internal/auth"
	"github.com/kimamovic21/real-estate-marketplace/internal/domain"
	"go.uber.org/zap"
)

const (
	listingFormField = "listing"
	formOverhead     = 1 << 20
)

type imageEntry struct {
	Kind string `json:"kind"` // "remote" or "local"
	URL  string `json:"url,omitempty"`
	File string `json:"file,omitempty"`
}

type listingRequest struct {
	Name          string       `json:"name"`
	Description   string       `json:"description"`
	Address       string       `json:"address"`
	RegularPrice  float64      `json:"regularPrice"`
	DiscountPrice float64      `json:"discountPrice"`
	Bathrooms     int          `json:"bathrooms"`
	Bedrooms      int          `json:"bedrooms"`
	Furnished     bool         `json:"furnished"`
	Parking       bool         `json:"parking"`
	Type          string       `json:"type"`
	Offer         bool         `json:"offer"`
	Images        []imageEntry `json:"images"`
	// ImageURLs is the plain form sent by older clients: every entry is remote.
	ImageURLs []string `json:"imageUrls"`
}

func (req *listingRequest) toInput(files map[string][]*multipart.FileHeader, maxBytes int64) (domain.ListingInput, error) {
	in := domain.ListingInput{
		Name:          req.Name,
		Description:   req.Description,
		Address:       req.Address,
		RegularPrice:  req.RegularPrice,
		DiscountPrice: req.DiscountPrice,
		Bathrooms:     req.Bathrooms,
		Bedrooms:      req.Bedrooms,
		Furnished:     req.Furnished,
		Parking:       req.Parking,
		Type:          domain.ListingType(req.Type),
		Offer:         req.Offer,
	}

	if len(req.Images) == 0 {
		for _, u := range req.ImageURLs {
			in.Images = append(in.Images, domain.RemoteImage{URL: u})
		}
		return in, nil
	}

	for i, e := range req.Images {
		switch strings.ToLower(e.Kind) {
		case "remote":
			in.Images = append(in.Images, domain.RemoteImage{URL: e.URL})
		case "local":
			img, err := readLocal(e.File, files, maxBytes)
			if err != nil {
				return in, err
			}
			in.Images = append(in.Images, img)
		default:
			return in, fmt.Errorf("%w: image %d has unknown kind %q", domain.ErrInvalidInput, i, e.Kind)
		}
	}
	return in, nil
}

// readLocal loads the file part referenced by handle. A missing part yields an
// image without content, which the image manager rejects as unresolved. Oversized
// parts are not read; their declared size is enough to reject them.
func readLocal(handle string, files map[string][]*multipart.FileHeader, maxBytes int64) (domain.LocalImage, error) {
	img := domain.LocalImage{Handle: handle}
	headers := files[handle]
	if handle == "" || len(headers) == 0 {
		return img, nil
	}
	fh := headers[0]
	img.FileName = fh.Filename
	img.ContentType = fh.Header.Get("Content-Type")
	img.Size = fh.Size
	if fh.Size > maxBytes {
		return img, nil
	}

	f, err := fh.Open()
	if err != nil {
		return img, fmt.Errorf("%w: cannot open file %q: %v", domain.ErrInvalidInput, handle, err)
	}
	defer f.Close()
	data, err := io.ReadAll(io.LimitReader(f, maxBytes+1))
	if err != nil {
		return img, fmt.Errorf("%w: cannot read file %q: %v", domain.ErrInvalidInput, handle, err)
	}
	img.Data = data
	return img, nil
}

// decodeListing accepts application/json or multipart/form-data bodies.
func (h *Handler) decodeListing(w http.ResponseWriter, r *http.Request) (domain.ListingInput, error) {
	mediaType, _, _ := mime.ParseMediaType(r.Header.Get("Content-Type"))
	if mediaType != "multipart/form-data" {
		var req listingRequest
		if err := decodeJSON(w, r, &req); err != nil {
			return domain.ListingInput{}, err
		}
		return req.toInput(nil, h.limits.MaxImageBytes)
	}

	limit := int64(h.limits.MaxImages)*h.limits.MaxImageBytes + formOverhead
	r.Body = http.MaxBytesReader(w, r.Body, limit)
	if err := r.ParseMultipartForm(limit); err != nil {
		return domain.ListingInput{}, fmt.Errorf("%w: malformed multipart body: %v", domain.ErrInvalidInput, err)
	}
	defer func() { _ = r.MultipartForm.RemoveAll() }()

	raw := r.FormValue(listingFormField)
	if raw == "" {
		return domain.ListingInput{}, fmt.Errorf("%w: missing %q form field", domain.ErrInvalidInput, listingFormField)
	}
	var req listingRequest
	if err := json.Unmarshal([]byte(raw), &req); err != nil {
		return domain.ListingInput{}, fmt.Errorf("%w: malformed listing JSON: %v", domain.ErrInvalidInput, err)
	}
	return req.toInput(r.MultipartForm.File, h.limits.MaxImageBytes)
}

func (h *Handler) HandleCreateListing(w http.ResponseWriter, r *http.Request) {
	in, err := h.decodeListing(w, r)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	listing, err := h.listings.CreateListing(r.Context(), auth.TokenFromRequest(r), in)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	if h.metrics != nil {
		h.metrics.ListingsCreatedTotal.Inc()
		h.countUploads(in)
	}
	writeJSON(w, http.StatusCreated, listing)
}

func (h *Handler) HandleUpdateListing(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	in, err := h.decodeListing(w, r)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	listing, err := h.listings.UpdateListing(r.Context(), auth.TokenFromRequest(r), id, in)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	if h.metrics != nil {
		h.metrics.ListingUpdatesTotal.Inc()
		h.countUploads(in)
	}
	writeJSON(w, http.StatusOK, listing)
}

func (h *Handler) HandleDeleteListing(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	if err := h.listings.DeleteListing(r.Context(), auth.TokenFromRequest(r), id); err != nil {
		h.writeError(w, r, err)
		return
	}
	if h.metrics != nil {
		h.metrics.ListingDeletesTotal.Inc()
	}
	writeJSON(w, http.StatusOK, messageBody{Success: true, Message: "Listing has been deleted!"})
}

func (h *Handler) HandleGetListing(w http.ResponseWriter, r *http.Request) {
	listing, err := h.listings.GetListing(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, listing)
}

func (h *Handler) HandleSearchListings(w http.ResponseWriter, r *http.Request) {
	filter, err := parseListingFilter(r)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	listings, err := h.listings.SearchListings(r.Context(), filter)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	h.logger.Debug("Listings search", zap.Int("results", len(listings)))
	writeJSON(w, http.StatusOK, listings)
}

func (h *Handler) countUploads(in domain.ListingInput) {
	handles := make(map[string]struct{})
	for _, img := range in.Images {
		if local, ok := img.(domain.LocalImage); ok {
			handles[local.Handle] = struct{}{}
		}
	}
	h.metrics.ImagesUploadedTotal.Add(float64(len(handles)))
}

// parseListingFilter reads the search query string. Boolean filters only narrow
// the result when set to "true".
func parseListingFilter(r *http.Request) (domain.ListingFilter, error) {
	q := r.URL.Query()
	f := domain.ListingFilter{
		SearchTerm: q.Get("searchTerm"),
		Type:       domain.ListingType(q.Get("type")),
		SortBy:     q.Get("sort"),
		SortOrder:  q.Get("order"),
	}
	for key, dst := range map[string]**bool{"offer": &f.Offer, "furnished": &f.Furnished, "parking": &f.Parking} {
		if q.Get(key) == "true" {
			t := true
			*dst = &t
		}
	}

	var err error
	if f.Limit, err = parseInt(q.Get("limit")); err != nil {
		return f, fmt.Errorf("%w: limit: %v", domain.ErrInvalidInput, err)
	}
	if f.StartIndex, err = parseInt(q.Get("startIndex")); err != nil {
		return f, fmt.Errorf("%w: startIndex: %v", domain.ErrInvalidInput, err)
	}
	return f, nil
}

func parseInt(s string) (int64, error) {
	if s == "" {
		return 0, nil
	}
	return strconv.ParseInt(s, 10, 64)
}
