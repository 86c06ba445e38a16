package api

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"math"
	"mime/multipart"
	"os"
	"path/filepath"

	fhttp "github.com/bogdanfinn/fhttp"
	"github.com/google/uuid"
	"github.com/tidwall/gjson"

	apierrors "github.com/diogo/stormchat/internal/errors"
	"github.com/diogo/stormchat/internal/models"
)

// maxUploadResponse bounds how much of the upload response is kept
const maxUploadResponse = 64 * 1024

// ProgressFunc receives the upload progress as a whole percentage
type ProgressFunc func(percent int)

// UploadResult describes a completed upload
type UploadResult struct {
	ID         string
	FileName   string
	Size       int64
	StatusCode int
	Message    string
	Body       string
}

// PercentOf returns round(sent*100/total) clamped to 0..100. A non-positive
// total yields 0.
func PercentOf(sent, total int64) int {
	if total <= 0 || sent <= 0 {
		return 0
	}
	pct := int(math.Round(float64(sent) * 100 / float64(total)))
	if pct > 100 {
		return 100
	}
	return pct
}

// progressReader reports how much of the request body the transport consumed
type progressReader struct {
	r          io.Reader
	sent       int64
	total      int64
	onProgress ProgressFunc
}

func (p *progressReader) Read(b []byte) (int, error) {
	n, err := p.r.Read(b)
	if n > 0 {
		p.sent += int64(n)
		if p.onProgress != nil {
			p.onProgress(PercentOf(p.sent, p.total))
		}
	}
	return n, err
}

// UploadFile sends the file at path as the single "file" field of a
// multipart POST. onProgress is called as the body is transmitted.
func (c *Client) UploadFile(ctx context.Context, path string, onProgress ProgressFunc) (*UploadResult, error) {
	if path == "" {
		return nil, apierrors.ErrNoFileSelected
	}

	fileName := filepath.Base(path)
	uploadID := uuid.NewString()
	log := c.log.With().Str("upload_id", uploadID).Str("file", fileName).Logger()

	body, contentType, err := buildMultipart(path, fileName)
	if err != nil {
		log.Error().Err(err).Msg("could not read file")
		return nil, apierrors.NewUploadError(fileName, err)
	}
	total := int64(body.Len())

	reader := &progressReader{r: body, total: total, onProgress: onProgress}
	req, err := fhttp.NewRequestWithContext(ctx, fhttp.MethodPost, c.uploadURL, reader)
	if err != nil {
		return nil, apierrors.NewUploadError(fileName, fmt.Errorf("failed to create request: %w", err))
	}
	req.ContentLength = total
	req.Header.Set("Content-Type", contentType)
	req.Header.Set("X-Upload-Id", uploadID)

	log.Debug().Int64("bytes", total).Str("url", c.uploadURL).Msg("upload started")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		log.Error().Err(err).Msg("upload request failed")
		return nil, apierrors.NewUploadError(fileName,
			apierrors.NewNetworkErrorWithEndpoint("upload", c.uploadURL, err))
	}
	if resp == nil || resp.Body == nil {
		log.Error().Msg("upload response has no body")
		return nil, apierrors.NewUploadError(fileName, apierrors.ErrNoResponseBody)
	}
	defer resp.Body.Close()

	respBody, _ := io.ReadAll(io.LimitReader(resp.Body, maxUploadResponse))

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		log.Error().Int("status", resp.StatusCode).Msg("upload rejected")
		excerpt := respBody
		if len(excerpt) > maxErrorBody {
			excerpt = excerpt[:maxErrorBody]
		}
		return nil, apierrors.NewUploadError(fileName,
			apierrors.NewAPIErrorWithBody(resp.StatusCode, c.uploadURL, errorMessage(respBody, "upload failed"), string(excerpt)))
	}

	result := &UploadResult{
		ID:         uploadID,
		FileName:   fileName,
		Size:       total,
		StatusCode: resp.StatusCode,
		Body:       string(respBody),
	}
	if gjson.ValidBytes(respBody) {
		result.Message = gjson.GetBytes(respBody, "message").String()
	}

	log.Info().Int("status", resp.StatusCode).Int64("bytes", total).Msg("upload complete")
	return result, nil
}

// buildMultipart encodes the file into an in-memory multipart body so its
// full length is known before sending
func buildMultipart(path, fileName string) (*bytes.Reader, string, error) {
	info, err := os.Stat(path)
	if err != nil {
		return nil, "", fmt.Errorf("failed to stat file: %w", err)
	}
	if info.IsDir() {
		return nil, "", fmt.Errorf("%s is a directory", path)
	}

	file, err := os.Open(path)
	if err != nil {
		return nil, "", fmt.Errorf("failed to open file: %w", err)
	}
	defer file.Close()

	var buf bytes.Buffer
	writer := multipart.NewWriter(&buf)

	part, err := writer.CreateFormFile(models.UploadFieldName, fileName)
	if err != nil {
		return nil, "", fmt.Errorf("failed to create form file: %w", err)
	}
	if _, err := io.Copy(part, file); err != nil {
		return nil, "", fmt.Errorf("failed to write file data: %w", err)
	}
	if err := writer.Close(); err != nil {
		return nil, "", fmt.Errorf("failed to finish multipart body: %w", err)
	}

	return bytes.NewReader(buf.Bytes()), writer.FormDataContentType(), nil
}
