package handlers_test

import (
	"bytes"
	"context"
	"errors"
	"io"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/geocoder89/placeshub/internal/auth"
	"github.com/geocoder89/placeshub/internal/domain/place"
	"github.com/geocoder89/placeshub/internal/domain/user"
	"github.com/geocoder89/placeshub/internal/geo"
	"github.com/geocoder89/placeshub/internal/http/handlers"
	"github.com/geocoder89/placeshub/internal/http/middlewares"
	"github.com/gin-gonic/gin"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Make sure Gin does not spam the console during the test

func init() {
	gin.SetMode(gin.TestMode)
}

// Fake implementations of the handlers.PlaceOps interface

type fakePlaceOps struct {
	createFn func(ctx context.Context, req place.CreatePlaceRequest, imagePath string, creatorID primitive.ObjectID) (place.Place, error)
	updateFn func(ctx context.Context, id primitive.ObjectID, req place.UpdatePlaceRequest, requesterID primitive.ObjectID) (place.Place, error)
	deleteFn func(ctx context.Context, id primitive.ObjectID, requesterID primitive.ObjectID) error
	getFn    func(ctx context.Context, id primitive.ObjectID) (place.Place, error)
	listFn   func(ctx context.Context, userID primitive.ObjectID) ([]place.Place, error)
}

func (f *fakePlaceOps) Create(ctx context.Context, req place.CreatePlaceRequest, imagePath string, creatorID primitive.ObjectID) (place.Place, error) {
	if f.createFn != nil {
		return f.createFn(ctx, req, imagePath, creatorID)
	}

	return place.Place{}, nil
}

func (f *fakePlaceOps) Update(ctx context.Context, id primitive.ObjectID, req place.UpdatePlaceRequest, requesterID primitive.ObjectID) (place.Place, error) {
	if f.updateFn != nil {
		return f.updateFn(ctx, id, req, requesterID)
	}

	return place.Place{}, nil
}

func (f *fakePlaceOps) Delete(ctx context.Context, id primitive.ObjectID, requesterID primitive.ObjectID) error {
	if f.deleteFn != nil {
		return f.deleteFn(ctx, id, requesterID)
	}

	return nil
}

func (f *fakePlaceOps) GetByID(ctx context.Context, id primitive.ObjectID) (place.Place, error) {
	if f.getFn != nil {
		return f.getFn(ctx, id)
	}

	return place.Place{}, nil
}

func (f *fakePlaceOps) ListByUser(ctx context.Context, userID primitive.ObjectID) ([]place.Place, error) {
	if f.listFn != nil {
		return f.listFn(ctx, userID)
	}

	return []place.Place{}, nil
}

type fakeSaver struct {
	savedPath string
	err       error
}

func (f *fakeSaver) Save(originalName string, r io.Reader) (string, error) {
	if f.err != nil {
		return "", f.err
	}

	if f.savedPath != "" {
		return f.savedPath, nil
	}

	return "uploads/images/test.png", nil
}

// fakeVerifier stands in for the JWT manager behind the auth middleware.
type fakeVerifier struct {
	userID string
	err    error
}

func (f *fakeVerifier) VerifyToken(token string) (*auth.Claims, error) {
	if f.err != nil {
		return nil, f.err
	}

	return &auth.Claims{UserID: f.userID, Email: "dhanu@gmail.com"}, nil
}

// multipartBody builds a multipart payload with form fields and, when
// withImage is set, a small png part.
func multipartBody(t *testing.T, fields map[string]string, withImage bool) (*bytes.Buffer, string) {
	t.Helper()

	body := &bytes.Buffer{}
	mw := multipart.NewWriter(body)

	for k, v := range fields {
		if err := mw.WriteField(k, v); err != nil {
			t.Fatalf("WriteField(%s) failed: %v", k, err)
		}
	}

	if withImage {
		part, err := mw.CreateFormFile("image", "photo.png")

		if err != nil {
			t.Fatalf("CreateFormFile failed: %v", err)
		}

		if _, err := part.Write([]byte("fake image bytes")); err != nil {
			t.Fatalf("writing image part failed: %v", err)
		}
	}

	if err := mw.Close(); err != nil {
		t.Fatalf("closing multipart writer failed: %v", err)
	}

	return body, mw.FormDataContentType()
}

var esbFields = map[string]string{
	"title":       "Empire State Building",
	"description": "One of the most famous skyscrapers in the world",
	"address":     "20 W 34th St, New York, NY 10001",
}

func TestCreatePlaceHandler(t *testing.T) {
	requester := primitive.NewObjectID()

	tests := []struct {
		name       string
		fields     map[string]string
		withImage  bool
		withAuth   bool
		opsSetUp   func(*fakePlaceOps)
		saver      *fakeSaver
		wantStatus int
	}{
		{
			name:      "success",
			fields:    esbFields,
			withImage: true,
			withAuth:  true,
			opsSetUp: func(f *fakePlaceOps) {
				f.createFn = func(ctx context.Context, req place.CreatePlaceRequest, imagePath string, creatorID primitive.ObjectID) (place.Place, error) {
					if creatorID != requester {
						t.Errorf("creator = %v, want the authenticated user %v", creatorID, requester)
					}
					if imagePath != "uploads/images/test.png" {
						t.Errorf("imagePath = %q", imagePath)
					}
					return place.Place{
						ID:          primitive.NewObjectID(),
						Title:       req.Title,
						Description: req.Description,
						Address:     req.Address,
						ImageURL:    imagePath,
						Location:    place.Location{Lat: 40.7484, Lng: -73.9857},
						Creator:     creatorID,
					}, nil
				}
			},
			wantStatus: http.StatusCreated,
		},
		{
			name:       "no_token",
			fields:     esbFields,
			withImage:  true,
			withAuth:   false,
			wantStatus: http.StatusUnauthorized,
		},
		{
			name:       "missing_title",
			fields:     map[string]string{"description": "d", "address": "a"},
			withImage:  true,
			withAuth:   true,
			wantStatus: http.StatusUnprocessableEntity,
		},
		{
			name:       "missing_image",
			fields:     esbFields,
			withImage:  false,
			withAuth:   true,
			wantStatus: http.StatusUnprocessableEntity,
		},
		{
			name:      "geocode_no_results",
			fields:    esbFields,
			withImage: true,
			withAuth:  true,
			opsSetUp: func(f *fakePlaceOps) {
				f.createFn = func(ctx context.Context, req place.CreatePlaceRequest, imagePath string, creatorID primitive.ObjectID) (place.Place, error) {
					return place.Place{}, geo.ErrNoResults
				}
			},
			wantStatus: http.StatusNotFound,
		},
		{
			name:      "geocoder_down",
			fields:    esbFields,
			withImage: true,
			withAuth:  true,
			opsSetUp: func(f *fakePlaceOps) {
				f.createFn = func(ctx context.Context, req place.CreatePlaceRequest, imagePath string, creatorID primitive.ObjectID) (place.Place, error) {
					return place.Place{}, geo.ErrServiceUnavailable
				}
			},
			wantStatus: http.StatusBadGateway,
		},
		{
			name:      "unknown_creator",
			fields:    esbFields,
			withImage: true,
			withAuth:  true,
			opsSetUp: func(f *fakePlaceOps) {
				f.createFn = func(ctx context.Context, req place.CreatePlaceRequest, imagePath string, creatorID primitive.ObjectID) (place.Place, error) {
					return place.Place{}, user.ErrNotFound
				}
			},
			wantStatus: http.StatusNotFound,
		},
		{
			name:      "storage_error",
			fields:    esbFields,
			withImage: true,
			withAuth:  true,
			opsSetUp: func(f *fakePlaceOps) {
				f.createFn = func(ctx context.Context, req place.CreatePlaceRequest, imagePath string, creatorID primitive.ObjectID) (place.Place, error) {
					return place.Place{}, errors.New("db error")
				}
			},
			wantStatus: http.StatusInternalServerError,
		},
	}

	for _, tt := range tests {
		tt := tt

		t.Run(tt.name, func(t *testing.T) {
			ops := &fakePlaceOps{}

			if tt.opsSetUp != nil {
				tt.opsSetUp(ops)
			}

			saver := tt.saver

			if saver == nil {
				saver = &fakeSaver{}
			}

			h := handlers.NewPlacesHandler(ops, saver)

			mw := middlewares.NewAuthMiddleware(&fakeVerifier{userID: requester.Hex()})

			r := gin.New()
			r.POST("/api/places", mw.RequireAuth(), h.CreatePlace)

			body, contentType := multipartBody(t, tt.fields, tt.withImage)

			req := httptest.NewRequest(http.MethodPost, "/api/places", body)
			req.Header.Set("Content-Type", contentType)

			if tt.withAuth {
				req.Header.Set("Authorization", "Bearer some-token")
			}

			w := httptest.NewRecorder()
			r.ServeHTTP(w, req)

			if w.Code != tt.wantStatus {
				t.Fatalf("got status %d, want %d, body=%s", w.Code, tt.wantStatus, w.Body.String())
			}
		})
	}
}

func TestGetPlaceHandler(t *testing.T) {
	known := primitive.NewObjectID()

	ops := &fakePlaceOps{
		getFn: func(ctx context.Context, id primitive.ObjectID) (place.Place, error) {
			if id == known {
				return place.Place{ID: id, Title: "Empire State Building"}, nil
			}
			return place.Place{}, place.ErrNotFound
		},
	}

	h := handlers.NewPlacesHandler(ops, &fakeSaver{})

	r := gin.New()
	r.GET("/api/places/:pid", h.GetPlace)

	tests := []struct {
		name       string
		pid        string
		wantStatus int
	}{
		{"found", known.Hex(), http.StatusOK},
		{"not_found", primitive.NewObjectID().Hex(), http.StatusNotFound},
		{"invalid_id", "not-an-object-id", http.StatusUnprocessableEntity},
	}

	for _, tt := range tests {
		tt := tt

		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/api/places/"+tt.pid, nil)
			w := httptest.NewRecorder()
			r.ServeHTTP(w, req)

			if w.Code != tt.wantStatus {
				t.Fatalf("got status %d, want %d, body=%s", w.Code, tt.wantStatus, w.Body.String())
			}
		})
	}
}

func TestGetPlacesByUserHandler(t *testing.T) {
	owner := primitive.NewObjectID()

	ops := &fakePlaceOps{
		listFn: func(ctx context.Context, userID primitive.ObjectID) ([]place.Place, error) {
			if userID == owner {
				return []place.Place{{ID: primitive.NewObjectID(), Creator: owner}}, nil
			}
			return nil, place.ErrNotFound
		},
	}

	h := handlers.NewPlacesHandler(ops, &fakeSaver{})

	// mirrors the real route registration, "user" rides the pid wildcard
	r := gin.New()
	r.GET("/api/places/:pid/:uid", h.GetPlacesByUser)

	tests := []struct {
		name       string
		path       string
		wantStatus int
	}{
		{"found", "/api/places/user/" + owner.Hex(), http.StatusOK},
		{"no_places", "/api/places/user/" + primitive.NewObjectID().Hex(), http.StatusNotFound},
		{"invalid_uid", "/api/places/user/nope", http.StatusUnprocessableEntity},
		{"wrong_literal", "/api/places/banana/" + owner.Hex(), http.StatusNotFound},
	}

	for _, tt := range tests {
		tt := tt

		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, tt.path, nil)
			w := httptest.NewRecorder()
			r.ServeHTTP(w, req)

			if w.Code != tt.wantStatus {
				t.Fatalf("got status %d, want %d, body=%s", w.Code, tt.wantStatus, w.Body.String())
			}
		})
	}
}

func TestUpdatePlaceHandler(t *testing.T) {
	requester := primitive.NewObjectID()
	pid := primitive.NewObjectID()

	tests := []struct {
		name       string
		body       string
		opsSetUp   func(*fakePlaceOps)
		wantStatus int
	}{
		{
			name: "success",
			body: `{"title":"ESB","description":"Renamed"}`,
			opsSetUp: func(f *fakePlaceOps) {
				f.updateFn = func(ctx context.Context, id primitive.ObjectID, req place.UpdatePlaceRequest, rid primitive.ObjectID) (place.Place, error) {
					if rid != requester {
						t.Errorf("requester = %v, want %v", rid, requester)
					}
					return place.Place{ID: id, Title: req.Title, Description: req.Description}, nil
				}
			},
			wantStatus: http.StatusOK,
		},
		{
			name:       "validation_error",
			body:       `{"title":""}`,
			wantStatus: http.StatusUnprocessableEntity,
		},
		{
			name: "forbidden",
			body: `{"title":"ESB","description":"Renamed"}`,
			opsSetUp: func(f *fakePlaceOps) {
				f.updateFn = func(ctx context.Context, id primitive.ObjectID, req place.UpdatePlaceRequest, rid primitive.ObjectID) (place.Place, error) {
					return place.Place{}, place.ErrForbidden
				}
			},
			wantStatus: http.StatusForbidden,
		},
		{
			name: "not_found",
			body: `{"title":"ESB","description":"Renamed"}`,
			opsSetUp: func(f *fakePlaceOps) {
				f.updateFn = func(ctx context.Context, id primitive.ObjectID, req place.UpdatePlaceRequest, rid primitive.ObjectID) (place.Place, error) {
					return place.Place{}, place.ErrNotFound
				}
			},
			wantStatus: http.StatusNotFound,
		},
	}

	for _, tt := range tests {
		tt := tt

		t.Run(tt.name, func(t *testing.T) {
			ops := &fakePlaceOps{}

			if tt.opsSetUp != nil {
				tt.opsSetUp(ops)
			}

			h := handlers.NewPlacesHandler(ops, &fakeSaver{})
			mw := middlewares.NewAuthMiddleware(&fakeVerifier{userID: requester.Hex()})

			r := gin.New()
			r.PATCH("/api/places/:pid", mw.RequireAuth(), h.UpdatePlace)

			req := httptest.NewRequest(http.MethodPatch, "/api/places/"+pid.Hex(), bytes.NewBufferString(tt.body))
			req.Header.Set("Content-Type", "application/json")
			req.Header.Set("Authorization", "Bearer some-token")

			w := httptest.NewRecorder()
			r.ServeHTTP(w, req)

			if w.Code != tt.wantStatus {
				t.Fatalf("got status %d, want %d, body=%s", w.Code, tt.wantStatus, w.Body.String())
			}
		})
	}
}

func TestDeletePlaceHandler(t *testing.T) {
	requester := primitive.NewObjectID()
	pid := primitive.NewObjectID()

	tests := []struct {
		name       string
		opsSetUp   func(*fakePlaceOps)
		wantStatus int
	}{
		{
			name: "success",
			opsSetUp: func(f *fakePlaceOps) {
				f.deleteFn = func(ctx context.Context, id primitive.ObjectID, rid primitive.ObjectID) error {
					return nil
				}
			},
			wantStatus: http.StatusOK,
		},
		{
			name: "not_found",
			opsSetUp: func(f *fakePlaceOps) {
				f.deleteFn = func(ctx context.Context, id primitive.ObjectID, rid primitive.ObjectID) error {
					return place.ErrNotFound
				}
			},
			wantStatus: http.StatusNotFound,
		},
		{
			name: "forbidden",
			opsSetUp: func(f *fakePlaceOps) {
				f.deleteFn = func(ctx context.Context, id primitive.ObjectID, rid primitive.ObjectID) error {
					return place.ErrForbidden
				}
			},
			wantStatus: http.StatusForbidden,
		},
	}

	for _, tt := range tests {
		tt := tt

		t.Run(tt.name, func(t *testing.T) {
			ops := &fakePlaceOps{}

			if tt.opsSetUp != nil {
				tt.opsSetUp(ops)
			}

			h := handlers.NewPlacesHandler(ops, &fakeSaver{})
			mw := middlewares.NewAuthMiddleware(&fakeVerifier{userID: requester.Hex()})

			r := gin.New()
			r.DELETE("/api/places/:pid", mw.RequireAuth(), h.DeletePlace)

			req := httptest.NewRequest(http.MethodDelete, "/api/places/"+pid.Hex(), nil)
			req.Header.Set("Authorization", "Bearer some-token")

			w := httptest.NewRecorder()
			r.ServeHTTP(w, req)

			if w.Code != tt.wantStatus {
				t.Fatalf("got status %d, want %d, body=%s", w.Code, tt.wantStatus, w.Body.String())
			}
		})
	}
}
