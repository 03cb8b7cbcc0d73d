// Package mongodb implements the data contract over the bridge routes, which
// own the document-store connection.
package mongodb

import (
	"bytes"
	"context"
	"fmt"
	"mime/multipart"
	"net/http"
	"net/textproto"
	"net/url"
	"strings"

	"vitamend-data/internal/donation/adapter/persistence/uploads"
	"vitamend-data/internal/donation/adapter/security"
	"vitamend-data/internal/donation/config"
	"vitamend-data/internal/donation/domain/model"
	"vitamend-data/internal/shared/logger"
)

// Adapter talks to the /api/db bridge. Reads degrade to empty results and
// writes to failure results when the bridge is unreachable.
type Adapter struct {
	baseURL string
	client  *http.Client
	tokens  *security.TokenService
	log     logger.Logger
}

// New creates the adapter with its own HTTP client.
func New(cfg config.MongoClientConfig, log logger.Logger) (*Adapter, error) {
	return NewWithClient(cfg, &http.Client{Timeout: cfg.Timeout}, log)
}

// NewWithClient creates the adapter on top of client.
func NewWithClient(cfg config.MongoClientConfig, client *http.Client, log logger.Logger) (*Adapter, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	if log == nil {
		log = logger.NewNopLogger()
	}

	a := &Adapter{
		baseURL: strings.TrimRight(cfg.BaseURL, "/"),
		client:  client,
		log:     log.WithComponent("mongodb-adapter"),
	}
	if cfg.JWTSecret != "" {
		tokens, err := security.NewTokenService(cfg.JWTSecret, cfg.JWTIssuer, 0)
		if err != nil {
			return nil, err
		}
		a.tokens = tokens
	}
	return a, nil
}

func (a *Adapter) Provider() model.Provider {
	return model.ProviderMongoDB
}

func (a *Adapter) logReadError(op string, err error) {
	a.log.WithFields(map[string]interface{}{"operation": op}).Errorf("bridge read failed: %v", err)
}

func (a *Adapter) InitDatabase(ctx context.Context) model.InitResult {
	var result model.InitResult
	if err := a.call(ctx, request{method: http.MethodPost, path: "/init", admin: true}, &result); err != nil {
		a.log.Errorf("Bridge initialization failed: %v", err)
		return model.InitResult{
			Success: false,
			Message: fmt.Sprintf("Failed to initialize MongoDB: %v", err),
		}
	}
	return result
}

// donationRequest mirrors the bridge's POST /donations body.
type donationRequest struct {
	model.DonationInput
	ImageURLs []string `json:"imageUrls"`
}

func (a *Adapter) SubmitDonation(ctx context.Context, input model.DonationInput, imageURLs []string) model.DbResult[model.CreatedID] {
	if imageURLs == nil {
		imageURLs = []string{}
	}
	r, err := jsonRequest(http.MethodPost, "/donations", donationRequest{DonationInput: input, ImageURLs: imageURLs}, false)
	if err != nil {
		return model.Fail[model.CreatedID](err.Error())
	}

	var res model.DbResult[model.CreatedID]
	if err := a.call(ctx, r, &res); err != nil {
		a.log.WithFields(map[string]interface{}{"operation": "SubmitDonation"}).Errorf("bridge write failed: %v", err)
		return model.Fail[model.CreatedID](err.Error())
	}
	return res
}

func (a *Adapter) GetDonations(ctx context.Context) []model.Donation {
	var donations []model.Donation
	if err := a.call(ctx, request{method: http.MethodGet, path: "/donations"}, &donations); err != nil {
		a.logReadError("GetDonations", err)
		return []model.Donation{}
	}
	if donations == nil {
		donations = []model.Donation{}
	}
	return donations
}

func (a *Adapter) GetDonationByID(ctx context.Context, id string) *model.Donation {
	if id == "" {
		return nil
	}
	var donation model.Donation
	if err := a.call(ctx, request{method: http.MethodGet, path: "/donations/" + url.PathEscape(id)}, &donation); err != nil {
		if statusOf(err) != http.StatusNotFound {
			a.logReadError("GetDonationByID", err)
		}
		return nil
	}
	return &donation
}

func (a *Adapter) UpdateDonationStatus(ctx context.Context, id string, status model.DonationStatus) model.DbResult[model.Empty] {
	if !status.Valid() {
		return model.Fail[model.Empty](model.MsgInvalidStatus)
	}
	if id == "" {
		return model.Fail[model.Empty](model.MsgDonationNotFound)
	}

	r, err := jsonRequest(http.MethodPatch, "/donations/"+url.PathEscape(id)+"/status", map[string]model.DonationStatus{"status": status}, true)
	if err != nil {
		return model.Fail[model.Empty](err.Error())
	}
	if err := a.call(ctx, r, nil); err != nil {
		if statusOf(err) == http.StatusNotFound {
			return model.Fail[model.Empty](model.MsgDonationNotFound)
		}
		a.log.WithFields(map[string]interface{}{"operation": "UpdateDonationStatus"}).Errorf("bridge write failed: %v", err)
		return model.Fail[model.Empty](err.Error())
	}
	return model.OkEmpty()
}

func (a *Adapter) GetMedicines(ctx context.Context) []model.Medicine {
	var medicines []model.Medicine
	if err := a.call(ctx, request{method: http.MethodGet, path: "/medicines"}, &medicines); err != nil {
		a.logReadError("GetMedicines", err)
		return []model.Medicine{}
	}
	if medicines == nil {
		medicines = []model.Medicine{}
	}
	return medicines
}

func (a *Adapter) GetMedicineByID(ctx context.Context, id string) *model.Medicine {
	if id == "" {
		return nil
	}
	var medicine model.Medicine
	if err := a.call(ctx, request{method: http.MethodGet, path: "/medicines/" + url.PathEscape(id)}, &medicine); err != nil {
		if s := statusOf(err); s != http.StatusNotFound && s != http.StatusBadRequest {
			a.logReadError("GetMedicineByID", err)
		}
		return nil
	}
	return &medicine
}

func (a *Adapter) SubmitVolunteer(ctx context.Context, input model.VolunteerInput) model.DbResult[model.CreatedID] {
	r, err := jsonRequest(http.MethodPost, "/volunteers", input, false)
	if err != nil {
		return model.Fail[model.CreatedID](err.Error())
	}

	var res model.DbResult[model.CreatedID]
	if err := a.call(ctx, r, &res); err != nil {
		a.log.WithFields(map[string]interface{}{"operation": "SubmitVolunteer"}).Errorf("bridge write failed: %v", err)
		return model.Fail[model.CreatedID](err.Error())
	}
	return res
}

func (a *Adapter) GetVolunteers(ctx context.Context) []model.Volunteer {
	var volunteers []model.Volunteer
	if err := a.call(ctx, request{method: http.MethodGet, path: "/volunteers"}, &volunteers); err != nil {
		a.logReadError("GetVolunteers", err)
		return []model.Volunteer{}
	}
	if volunteers == nil {
		volunteers = []model.Volunteer{}
	}
	return volunteers
}

func (a *Adapter) GetProfile(ctx context.Context, userID string) *model.Profile {
	if userID == "" {
		return nil
	}
	var profile model.Profile
	if err := a.call(ctx, request{method: http.MethodGet, path: "/profiles/" + url.PathEscape(userID)}, &profile); err != nil {
		if statusOf(err) != http.StatusNotFound {
			a.logReadError("GetProfile", err)
		}
		return nil
	}
	return &profile
}

func (a *Adapter) UpsertProfile(ctx context.Context, update model.ProfileUpdate) model.DbResult[model.Empty] {
	if update.ID == "" {
		return model.Fail[model.Empty]("profile id is required")
	}
	r, err := jsonRequest(http.MethodPut, "/profiles/"+url.PathEscape(update.ID), update, false)
	if err != nil {
		return model.Fail[model.Empty](err.Error())
	}
	if err := a.call(ctx, r, nil); err != nil {
		a.log.WithFields(map[string]interface{}{"operation": "UpsertProfile"}).Errorf("bridge write failed: %v", err)
		return model.Fail[model.Empty](err.Error())
	}
	return model.OkEmpty()
}

type uploadResponse struct {
	Success bool `json:"success"`
	Data    struct {
		URL string `json:"url"`
	} `json:"data"`
}

func (a *Adapter) UploadImage(ctx context.Context, file model.File, folder string) *string {
	var buf bytes.Buffer
	w := multipart.NewWriter(&buf)

	h := make(textproto.MIMEHeader)
	h.Set("Content-Disposition", fmt.Sprintf(`form-data; name="file"; filename=%q`, file.Name))
	h.Set("Content-Type", file.MimeType())
	part, err := w.CreatePart(h)
	if err == nil {
		_, err = part.Write(file.Data)
	}
	if err == nil {
		err = w.WriteField("folder", model.FolderOrDefault(folder))
	}
	if err == nil {
		err = w.Close()
	}
	if err != nil {
		a.log.Errorf("failed to encode upload of %s: %v", file.Name, err)
		return nil
	}

	var res uploadResponse
	r := request{method: http.MethodPost, path: "/images", body: &buf, contentType: w.FormDataContentType()}
	if err := a.call(ctx, r, &res); err != nil || !res.Success || res.Data.URL == "" {
		a.log.WithFields(map[string]interface{}{"file": file.Name}).Errorf("upload failed: %v", err)
		return nil
	}
	return &res.Data.URL
}

func (a *Adapter) UploadMultipleImages(ctx context.Context, files []model.File, folder string) []string {
	return uploads.Fanout(ctx, files, func(ctx context.Context, f model.File) *string {
		return a.UploadImage(ctx, f, folder)
	})
}

func (a *Adapter) DeleteImage(ctx context.Context, imageURL string) bool {
	if imageURL == "" {
		return false
	}
	var res struct {
		Success bool `json:"success"`
	}
	r := request{method: http.MethodDelete, path: "/images?url=" + url.QueryEscape(imageURL), admin: true}
	if err := a.call(ctx, r, &res); err != nil {
		a.log.Errorf("delete failed for %s: %v", imageURL, err)
		return false
	}
	return res.Success
}
