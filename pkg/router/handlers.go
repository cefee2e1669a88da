package router

import (
	"context"
	"fmt"

	"github.com/aretw0/hostbridge/pkg/domain"
)

func unexpected(msg domain.Message) error {
	return fmt.Errorf("%w: unexpected %T on %s", domain.ErrMalformedPayload, msg, msg.Channel())
}

func dialogHandler(d Dialogs) handler {
	return func(ctx context.Context, msg domain.Message) (*domain.Response, error) {
		switch m := msg.(type) {
		case domain.OpenDialog:
			d.Open(ctx, m.DomID)
		case domain.CloseDialog:
			d.Close(ctx, m.DomID)
		default:
			return nil, unexpected(msg)
		}
		return nil, nil
	}
}

func exportHandler(e Exporter) handler {
	return func(ctx context.Context, msg domain.Message) (*domain.Response, error) {
		m, ok := msg.(domain.DownloadSvg)
		if !ok {
			return nil, unexpected(msg)
		}
		e.ExportSvg(ctx, m.DomID, m.FileName)
		return nil, nil
	}
}

func logHandler(d Diagnostics) handler {
	return func(ctx context.Context, msg domain.Message) (*domain.Response, error) {
		m, ok := msg.(domain.Log)
		if !ok {
			return nil, unexpected(msg)
		}
		d.Log(ctx, m.Payload)
		return nil, nil
	}
}

func storageHandler(s Storage) handler {
	return func(ctx context.Context, msg domain.Message) (*domain.Response, error) {
		var result any
		switch m := msg.(type) {
		case domain.SavePreset:
			result = s.Save(ctx, m.Key, m.Payload)
		case domain.ListPresets:
			result = s.List(ctx)
		case domain.LoadPreset:
			result = s.Load(ctx, m.Key)
		case domain.DeletePreset:
			result = s.Delete(ctx, m.Key)
		default:
			return nil, unexpected(msg)
		}

		ch, _ := domain.ResponseChannel(msg.Channel())
		return &domain.Response{Channel: ch, Result: result}, nil
	}
}
