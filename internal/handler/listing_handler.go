package handler

import (
	"errors"
	"io"
	"mime/multipart"
	"net/http"

	"go.uber.org/zap"

	"github.com/boddenberg/revomotors-web/internal/domain"
	"github.com/boddenberg/revomotors-web/internal/service"
	"github.com/boddenberg/revomotors-web/internal/web"
)

type listCarData struct {
	Form    domain.ListingForm
	Receipt *domain.ListingReceipt

	Conditions    []domain.Option
	Transmissions []domain.Option
	FuelTypes     []domain.Option
	Titles        []domain.Option
	Accidents     []domain.Option
	Owners        []domain.Option
}

func newListCarData(form domain.ListingForm) *listCarData {
	return &listCarData{
		Form:          form,
		Conditions:    domain.ConditionOptions,
		Transmissions: domain.TransmissionOptions,
		FuelTypes:     domain.FuelTypeOptions,
		Titles:        domain.TitleOptions,
		Accidents:     domain.AccidentOptions,
		Owners:        domain.OwnerOptions,
	}
}

// ============================================================
// Seller listing: GET/POST /seller/list-car
// ============================================================

func listCarPageHandler(k *kit) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		k.render(w, r, http.StatusOK, web.PageListCar, &web.View{
			Title: "List your car",
			Data:  newListCarData(domain.NewListingForm()),
		})
	}
}

func listCarHandler(svc *service.ListingService, maxUploadBytes int64, k *kit) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx, span := tracer.Start(r.Context(), "POST /seller/list-car")
		defer span.End()

		r.Body = http.MaxBytesReader(w, r.Body, maxUploadBytes)
		if err := r.ParseMultipartForm(maxUploadBytes); err != nil && !errors.Is(err, http.ErrNotMultipart) {
			status, msg := http.StatusBadRequest, "Invalid form submission"
			var tooLarge *http.MaxBytesError
			if errors.As(err, &tooLarge) {
				status, msg = http.StatusRequestEntityTooLarge, "Photos are too large. Please upload smaller images."
			}
			k.logger.Warn("listing: form rejected", zap.Error(err))
			k.render(w, r, status, web.PageListCar, &web.View{
				Title: "List your car", Error: msg,
				Data: newListCarData(domain.NewListingForm()),
			})
			return
		}

		form := domain.ListingForm{
			Year:         trimmed(r, "year"),
			Make:         trimmed(r, "make"),
			Model:        trimmed(r, "model"),
			Trim:         trimmed(r, "trim"),
			Mileage:      trimmed(r, "mileage"),
			Condition:    r.PostFormValue("condition"),
			VIN:          trimmed(r, "vin"),
			Color:        trimmed(r, "color"),
			Transmission: r.PostFormValue("transmission"),
			FuelType:     r.PostFormValue("fuel_type"),
			Title:        r.PostFormValue("title_status"),
			Accidents:    r.PostFormValue("accident_history"),
			Owners:       r.PostFormValue("number_of_owners"),
			SellerName:   trimmed(r, "seller_name"),
			Email:        trimmed(r, "email"),
			Phone:        trimmed(r, "phone"),
			ZipCode:      trimmed(r, "zip_code"),
			Description:  r.PostFormValue("description"),
			AskingPrice:  trimmed(r, "asking_price"),
		}

		photos, err := readPhotos(r.MultipartForm)
		if err == nil {
			var receipt *domain.ListingReceipt
			receipt, err = svc.Submit(ctx, &form, photos)
			if err == nil {
				data := newListCarData(domain.NewListingForm())
				data.Receipt = receipt
				k.render(w, r, http.StatusOK, web.PageListCar, &web.View{Title: "List your car", Data: data})
				return
			}
		}

		status, msg := k.explain(err)
		k.render(w, r, status, web.PageListCar, &web.View{
			Title: "List your car", Error: msg,
			Data: newListCarData(form),
		})
	}
}

// readPhotos reads the optional photos field of the upload.
func readPhotos(mf *multipart.Form) ([]domain.Photo, error) {
	if mf == nil {
		return nil, nil
	}
	headers := mf.File["photos"]
	photos := make([]domain.Photo, 0, len(headers))
	for _, fh := range headers {
		if fh.Size == 0 {
			continue
		}
		f, err := fh.Open()
		if err != nil {
			return nil, err
		}
		data, err := io.ReadAll(f)
		f.Close()
		if err != nil {
			return nil, err
		}
		photos = append(photos, domain.Photo{
			Filename:    fh.Filename,
			ContentType: fh.Header.Get("Content-Type"),
			Data:        data,
		})
	}
	return photos, nil
}
