// Package gdocs publishes finished newsletters as Google Docs. The
// integration is optional; the engine treats export failures as log-only.
package gdocs

import (
	"context"
	"fmt"
	"strings"
	"time"

	"google.golang.org/api/docs/v1"
	"google.golang.org/api/drive/v3"
	"google.golang.org/api/option"

	"github.com/iterate-labs/newsletter-portal/internal/types"
)

const folderMimeType = "application/vnd.google-apps.folder"
const documentMimeType = "application/vnd.google-apps.document"

// Exporter creates one Google Doc per exported newsletter, grouped in
// per-customer folders under a configured parent folder.
type Exporter struct {
	drive          *drive.Service
	docs           *docs.Service
	parentFolderID string
}

// NewExporter creates an Exporter from service account credentials JSON.
func NewExporter(ctx context.Context, credentialsJSON []byte, parentFolderID string) (*Exporter, error) {
	if len(credentialsJSON) == 0 {
		return nil, fmt.Errorf("google credentials are not configured")
	}
	if parentFolderID == "" {
		return nil, fmt.Errorf("drive parent folder id is required")
	}

	driveSvc, err := drive.NewService(ctx,
		option.WithCredentialsJSON(credentialsJSON),
		option.WithScopes(drive.DriveScope))
	if err != nil {
		return nil, fmt.Errorf("failed to create drive client: %w", err)
	}
	docsSvc, err := docs.NewService(ctx,
		option.WithCredentialsJSON(credentialsJSON),
		option.WithScopes(docs.DocumentsScope))
	if err != nil {
		return nil, fmt.Errorf("failed to create docs client: %w", err)
	}

	return &Exporter{
		drive:          driveSvc,
		docs:           docsSvc,
		parentFolderID: parentFolderID,
	}, nil
}

// Export creates the newsletter document and returns its id and view URL.
func (e *Exporter) Export(ctx context.Context, customerName string, content *types.NewsletterContent) (string, string, error) {
	folderID, err := e.ensureCustomerFolder(ctx, customerName)
	if err != nil {
		return "", "", err
	}

	name := fmt.Sprintf("%s - Newsletter - %s", customerName, time.Now().UTC().Format("2006-01-02"))
	file, err := e.drive.Files.Create(&drive.File{
		Name:     name,
		MimeType: documentMimeType,
		Parents:  []string{folderID},
	}).Fields("id, webViewLink").Context(ctx).Do()
	if err != nil {
		return "", "", fmt.Errorf("failed to create document: %w", err)
	}

	_, err = e.docs.Documents.BatchUpdate(file.Id, &docs.BatchUpdateDocumentRequest{
		Requests: []*docs.Request{{
			InsertText: &docs.InsertTextRequest{
				Text:                 renderPlainText(customerName, content),
				EndOfSegmentLocation: &docs.EndOfSegmentLocation{SegmentId: ""},
			},
		}},
	}).Context(ctx).Do()
	if err != nil {
		return "", "", fmt.Errorf("failed to write document body: %w", err)
	}

	url := file.WebViewLink
	if url == "" {
		got, err := e.drive.Files.Get(file.Id).Fields("webViewLink").Context(ctx).Do()
		if err == nil {
			url = got.WebViewLink
		}
	}
	return file.Id, url, nil
}

// ensureCustomerFolder finds or creates the customer's folder under the parent.
func (e *Exporter) ensureCustomerFolder(ctx context.Context, customerName string) (string, error) {
	query := fmt.Sprintf("'%s' in parents and mimeType = '%s' and name = '%s' and trashed = false",
		e.parentFolderID, folderMimeType, strings.ReplaceAll(customerName, "'", `\'`))
	list, err := e.drive.Files.List().Q(query).Fields("files(id, name)").Context(ctx).Do()
	if err != nil {
		return "", fmt.Errorf("failed to search for customer folder: %w", err)
	}
	if len(list.Files) > 0 {
		return list.Files[0].Id, nil
	}

	folder, err := e.drive.Files.Create(&drive.File{
		Name:     customerName,
		MimeType: folderMimeType,
		Parents:  []string{e.parentFolderID},
	}).Fields("id").Context(ctx).Do()
	if err != nil {
		return "", fmt.Errorf("failed to create customer folder: %w", err)
	}
	return folder.Id, nil
}

func renderPlainText(customerName string, c *types.NewsletterContent) string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "%s Newsletter\n\n", customerName)
	fmt.Fprintf(&sb, "Executive Summary\n%s\n\n", c.ExecutiveSummary)

	if len(c.CustomerHighlights) > 0 {
		sb.WriteString("Customer Highlights\n")
		for _, h := range c.CustomerHighlights {
			fmt.Fprintf(&sb, "- %s\n  Implication: %s\n", h.Summary, h.Implication)
			if h.SourceURL != "" {
				fmt.Fprintf(&sb, "  Source: %s\n", h.SourceURL)
			}
		}
		sb.WriteString("\n")
	}

	if len(c.IndustryTrends) > 0 {
		sb.WriteString("Industry Trends\n")
		for _, t := range c.IndustryTrends {
			fmt.Fprintf(&sb, "- %s\n  Implication: %s\n", t.Trend, t.Implication)
			if t.SourceURL != "" {
				fmt.Fprintf(&sb, "  Source: %s\n", t.SourceURL)
			}
		}
		sb.WriteString("\n")
	}

	if len(c.IterateUpdates) > 0 {
		sb.WriteString("Updates From Our Team\n")
		for _, u := range c.IterateUpdates {
			fmt.Fprintf(&sb, "- %s\n", u.Update)
		}
		sb.WriteString("\n")
	}

	if len(c.FutureIdeas) > 0 {
		sb.WriteString("Looking Ahead\n")
		for _, idea := range c.FutureIdeas {
			fmt.Fprintf(&sb, "- %s: %s\n", idea.Idea, idea.Value)
		}
		sb.WriteString("\n")
	}

	if c.GeneratedAtISO != "" {
		fmt.Fprintf(&sb, "Generated at %s\n", c.GeneratedAtISO)
	}
	return sb.String()
}
