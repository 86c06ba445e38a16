package models

// UploadState tracks the file chosen on the upload screen and its progress
type UploadState struct {
	SelectedFile    string
	ProgressPercent int
}

// HasFile reports whether a file has been selected
func (s UploadState) HasFile() bool {
	return s.SelectedFile != ""
}

// SelectFile chooses a new file and resets the progress
func (s UploadState) SelectFile(path string) UploadState {
	return UploadState{SelectedFile: path}
}

// SetProgress records the latest progress, clamped to 0..100
func (s UploadState) SetProgress(percent int) UploadState {
	switch {
	case percent < 0:
		percent = 0
	case percent > 100:
		percent = 100
	}
	s.ProgressPercent = percent
	return s
}
