package client

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"path/filepath"
	"strings"

	"github.com/wikismart/wikismart/internal/models"
)

// Upload is a PDF handed to one of the /upload/pdf endpoints.
type Upload struct {
	Filename string
	Content  io.Reader
}

func (c *Client) SummarizePDF(ctx context.Context, f Upload, langCode string) (*models.SummaryResult, error) {
	var out models.SummaryResult
	if err := c.postMultipart(ctx, "/upload/pdf/summarize", f, map[string]string{"lang_code": langCode}, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) TranslatePDF(ctx context.Context, f Upload, targetLang string) (*models.TranslationResult, error) {
	var out models.TranslationResult
	if err := c.postMultipart(ctx, "/upload/pdf/translate", f, map[string]string{"target_lang": targetLang}, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) QuizPDF(ctx context.Context, f Upload, langCode string) (*models.QuizResult, error) {
	var out models.QuizResult
	if err := c.postMultipart(ctx, "/upload/pdf/quiz", f, map[string]string{"lang_code": langCode}, &out); err != nil {
		return nil, err
	}
	if err := checkQuiz(http.MethodPost, "/upload/pdf/quiz", &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// postMultipart sends the file as the "file" part plus non-empty fields.
// The multipart boundary content type replaces the JSON default.
func (c *Client) postMultipart(ctx context.Context, path string, f Upload, fields map[string]string, out any) error {
	if f.Content == nil || strings.TrimSpace(f.Filename) == "" {
		return fmt.Errorf("%w: no file selected", ErrInvalidArgument)
	}
	buf := &bytes.Buffer{}
	mw := multipart.NewWriter(buf)
	part, err := mw.CreateFormFile("file", filepath.Base(f.Filename))
	if err != nil {
		return err
	}
	if _, err := io.Copy(part, f.Content); err != nil {
		return fmt.Errorf("read %s: %w", f.Filename, err)
	}
	for k, v := range fields {
		if v == "" {
			continue
		}
		if err := mw.WriteField(k, v); err != nil {
			return err
		}
	}
	if err := mw.Close(); err != nil {
		return err
	}
	req, err := c.newRequest(ctx, http.MethodPost, path, nil, buf)
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", mw.FormDataContentType())
	req.Header.Set("Accept", "application/json")
	return c.decode(req, out)
}
