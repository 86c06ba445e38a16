package commands

import (
	"strings"
	"testing"

	"github.com/diogo/stormchat/internal/api"
	apierrors "github.com/diogo/stormchat/internal/errors"
)

func TestUpload_Success(t *testing.T) {
	fc := &fakeClient{
		progress: []int{25, 100},
		result:   &api.UploadResult{FileName: "report.pdf", Size: 2048, StatusCode: 200, Message: "stored"},
	}
	td := setupCommandTest(t, fc)
	td.tty = true

	out, stderr, err := executeCommand(t, "", "upload", "/data/report.pdf")
	if err != nil {
		t.Fatalf("Execute failed: %v", err)
	}
	if len(fc.paths) != 1 || fc.paths[0] != "/data/report.pdf" {
		t.Errorf("paths = %v", fc.paths)
	}
	if !strings.Contains(out, "report.pdf") || !strings.Contains(out, "2.0 kB") || !strings.Contains(out, "stored") {
		t.Errorf("output = %q", out)
	}
	if !strings.Contains(stderr, "report.pdf") {
		t.Errorf("expected a progress line, got %q", stderr)
	}
}

func TestUpload_Failure(t *testing.T) {
	inner := apierrors.NewAPIError(413, "http://localhost:5000/api/upload", "too large")
	fc := &fakeClient{progress: []int{60}, uploadErr: apierrors.NewUploadError("big.iso", inner)}
	setupCommandTest(t, fc)

	_, stderr, err := executeCommand(t, "", "upload", "big.iso")
	if err == nil {
		t.Fatal("expected an error")
	}
	if !apierrors.IsUploadError(err) {
		t.Errorf("expected an upload error, got %v", err)
	}
	if !strings.Contains(stderr, "Upload failed") || !strings.Contains(stderr, "413") {
		t.Errorf("stderr = %q", stderr)
	}
}

func TestUpload_RequiresFile(t *testing.T) {
	setupCommandTest(t, &fakeClient{})

	if _, _, err := executeCommand(t, "", "upload"); err == nil {
		t.Error("expected an argument error")
	}
}
