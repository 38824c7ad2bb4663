package grading

import (
	"testing"
	"time"
)

func TestReferenceTemplateNeedsRefresh(t *testing.T) {
	now := time.Date(2022, 3, 14, 12, 0, 0, 0, time.UTC)
	nowFunc = func() time.Time { return now }
	defer func() { nowFunc = time.Now }()

	tests := []struct {
		name        string
		lastUpdated time.Time
		want        bool
	}{
		{name: "fresh", lastUpdated: now.Add(-time.Hour), want: false},
		{name: "exactly at window", lastUpdated: now.Add(-2 * 24 * time.Hour), want: false},
		{name: "just past window", lastUpdated: now.Add(-2*24*time.Hour - time.Second), want: true},
		{name: "never updated", lastUpdated: time.Time{}, want: true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tmpl := ReferenceTemplate{Content: "x", LastUpdated: tt.lastUpdated}
			if got := tmpl.NeedsRefresh(); got != tt.want {
				t.Errorf("NeedsRefresh() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestSubmissionNeedsRefresh(t *testing.T) {
	now := time.Date(2022, 3, 14, 12, 0, 0, 0, time.UTC)
	nowFunc = func() time.Time { return now }
	defer func() { nowFunc = time.Now }()

	complete := Submission{
		ReferenceTemplateID: "tmpl-1",
		StudentName:         "Jane Doe",
		RawProfilePhotoURL:  "//lh3.googleusercontent.com/jane.jpg",
		Content:             "Essay\n=====\nHello",
		LastUpdated:         now.Add(-time.Hour),
	}

	tests := []struct {
		name   string
		mutate func(*Submission)
		want   bool
	}{
		{name: "complete and fresh", mutate: func(*Submission) {}, want: false},
		{name: "old", mutate: func(s *Submission) { s.LastUpdated = now.Add(-3 * 24 * time.Hour) }, want: true},
		{name: "no template link", mutate: func(s *Submission) { s.ReferenceTemplateID = "" }, want: true},
		{name: "no student name", mutate: func(s *Submission) { s.StudentName = "" }, want: true},
		{name: "no photo url", mutate: func(s *Submission) { s.RawProfilePhotoURL = "" }, want: true},
		{name: "content never fetched", mutate: func(s *Submission) { s.Content = "" }, want: true},
		{name: "placeholder content counts as fetched", mutate: func(s *Submission) { s.Content = NoAttachmentsFound }, want: false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			sub := complete
			tt.mutate(&sub)
			if got := sub.NeedsRefresh(); got != tt.want {
				t.Errorf("NeedsRefresh() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestSubmissionProfilePhotoURL(t *testing.T) {
	sub := Submission{RawProfilePhotoURL: "//lh3.googleusercontent.com/jane.jpg"}
	if got, want := sub.ProfilePhotoURL(), "https://lh3.googleusercontent.com/jane.jpg"; got != want {
		t.Errorf("ProfilePhotoURL() = %q, want %q", got, want)
	}
}

func TestGradingSessionDetailViewURL(t *testing.T) {
	s := GradingSession{UIURL: "https://classroom.google.com/c/abc/a/def/details"}
	want := "https://classroom.google.com/c/abc/a/def/submissions/by-status/and-sort-first-name/all"
	if got := s.DetailViewURL(); got != want {
		t.Errorf("DetailViewURL() = %q, want %q", got, want)
	}
}
