package usecase

import (
	"context"
	"errors"

	nextgen "github.com/totegamma/nextgen-portal"
	"github.com/totegamma/nextgen-portal/internal/domain"
	"github.com/totegamma/nextgen-portal/jsonld"
	"github.com/totegamma/nextgen-portal/schemas"
)

// ErrUpstream is returned when a service answered without a usable value.
var ErrUpstream = errors.New("the service did not complete the request")

// DatasetView is a dataset as the detail page shows it.
type DatasetView struct {
	Row      nextgen.DatasetRow `json:"row"`
	Document map[string]any     `json:"document"`
}

type DatasetUsecase struct {
	gateway  CatalogGateway
	notifier Notifier
	language string
}

func NewDatasetUsecase(gateway CatalogGateway, notifier Notifier, language string) *DatasetUsecase {
	if language == "" {
		language = nextgen.DefaultLanguage
	}
	return &DatasetUsecase{gateway: gateway, notifier: notifier, language: language}
}

func (uc *DatasetUsecase) Get(ctx context.Context, id string) (DatasetView, error) {
	doc, err := uc.gateway.GetDataset(ctx, id)
	if err != nil {
		return DatasetView{}, err
	}

	ds := jsonld.AsObject(doc)
	if !ds.HasType(schemas.TypeDataset) {
		ds = jsonld.AsObject(jsonld.FindDataset(doc))
	}
	if ds == nil {
		return DatasetView{}, domain.NotFoundError{Resource: "dataset"}
	}

	opts := jsonld.DefaultPlainOptions()
	opts.Language = uc.language
	return DatasetView{
		Row:      jsonld.ProjectDataset(ds, uc.language),
		Document: jsonld.ToPlainObject(ds, opts),
	}, nil
}

// Save stores document under filename and returns what the catalog kept.
func (uc *DatasetUsecase) Save(ctx context.Context, filename string, document map[string]any) (map[string]any, error) {
	doc, err := uc.gateway.SaveDataset(ctx, filename, document)
	if err != nil {
		return nil, err
	}
	if doc == nil {
		return nil, ErrUpstream
	}
	uc.notify(ctx, "Dataset saved")
	raw, _ := jsonld.Raw(doc).(map[string]any)
	if raw == nil {
		raw = map[string]any{}
	}
	return raw, nil
}

func (uc *DatasetUsecase) Delete(ctx context.Context, id string) (bool, error) {
	return uc.toggle(ctx, uc.gateway.DeleteDataset, id, "Dataset deleted")
}

func (uc *DatasetUsecase) Share(ctx context.Context, id string) (bool, error) {
	return uc.toggle(ctx, uc.gateway.ShareDataset, id, "Dataset shared")
}

func (uc *DatasetUsecase) Unshare(ctx context.Context, id string) (bool, error) {
	return uc.toggle(ctx, uc.gateway.UnshareDataset, id, "Dataset unshared")
}

func (uc *DatasetUsecase) toggle(ctx context.Context, op func(context.Context, string) (bool, error), id, message string) (bool, error) {
	ok, err := op(ctx, id)
	if err != nil {
		return false, err
	}
	if ok {
		uc.notify(ctx, message)
	}
	return ok, nil
}

func (uc *DatasetUsecase) notify(ctx context.Context, message string) {
	if uc.notifier != nil {
		uc.notifier.Notify(ctx, nextgen.SeveritySuccess, message)
	}
}
