package gmail

import (
	"context"
	"encoding/base64"
	"fmt"
	"strings"

	"github.com/avast/retry-go/v4"
	gmail "google.golang.org/api/gmail/v1"
	"google.golang.org/api/googleapi"
	"google.golang.org/api/option"

	"github.com/Tripper99/DJs-KB-maskin/internal/google"
)

const (
	// MaxAttachmentSize defines the maximum attachment size in bytes (25MB)
	MaxAttachmentSize = 25 * 1024 * 1024

	apiRetries = 3
)

// AttachmentInfo represents an attachment's metadata
type AttachmentInfo struct {
	MessageID    string
	AttachmentID string
	Filename     string
	MimeType     string
	Size         int64
}

// Client wraps the Gmail Users service.
type Client struct {
	svc     *gmail.UsersService
	account string
}

// Account returns the account name this client is associated with
func (c *Client) Account() string {
	return c.account
}

// NewClient creates a Gmail client authenticated with the account's cached
// OAuth token. The token must have been stored with the auth command.
func NewClient(ctx context.Context, credentialsFile, account string) (*Client, error) {
	conf, err := google.ReadCredentials(credentialsFile)
	if err != nil {
		return nil, err
	}
	httpClient, err := google.HTTPClient(ctx, conf, account)
	if err != nil {
		return nil, err
	}
	svc, err := gmail.NewService(ctx, option.WithHTTPClient(httpClient))
	if err != nil {
		return nil, fmt.Errorf("failed to create Gmail service: %w", err)
	}
	return &Client{svc: svc.Users, account: account}, nil
}

// ForeachMessageID iterates over the ids of all messages matching the
// query, following pagination. Iteration stops on the first error from fn
// or when ctx is done.
func (c *Client) ForeachMessageID(ctx context.Context, query string, fn func(id string) error) error {
	pageToken := ""
	for {
		if err := ctx.Err(); err != nil {
			return err
		}
		req := c.svc.Messages.List("me").Q(query)
		if pageToken != "" {
			req.PageToken(pageToken)
		}
		res, err := doWithRetry(ctx, req.Do)
		if err != nil {
			return fmt.Errorf("listing messages: %w", err)
		}
		for _, m := range res.Messages {
			if err := fn(m.Id); err != nil {
				return err
			}
		}
		if res.NextPageToken == "" {
			return nil
		}
		pageToken = res.NextPageToken
	}
}

// ListJPGAttachments returns metadata for the message's JPG attachments.
func (c *Client) ListJPGAttachments(ctx context.Context, messageID string) ([]*AttachmentInfo, error) {
	msg, err := doWithRetry(ctx, c.svc.Messages.Get("me", messageID).Format("full").Do)
	if err != nil {
		return nil, fmt.Errorf("failed to get message %s: %w", messageID, err)
	}

	var attachments []*AttachmentInfo
	walkParts(msg.Payload, func(part *gmail.MessagePart) {
		if part.Filename == "" || part.Body == nil || part.Body.AttachmentId == "" {
			return
		}
		if !isJPGName(part.Filename) {
			return
		}
		attachments = append(attachments, &AttachmentInfo{
			MessageID:    messageID,
			AttachmentID: part.Body.AttachmentId,
			Filename:     part.Filename,
			MimeType:     part.MimeType,
			Size:         part.Body.Size,
		})
	})
	return attachments, nil
}

// FetchAttachment retrieves and decodes the content of an attachment.
func (c *Client) FetchAttachment(ctx context.Context, messageID, attachmentID string) ([]byte, error) {
	if messageID == "" {
		return nil, fmt.Errorf("messageID is required")
	}
	if attachmentID == "" {
		return nil, fmt.Errorf("attachmentID is required")
	}

	attachment, err := doWithRetry(ctx, c.svc.Messages.Attachments.Get("me", messageID, attachmentID).Do)
	if err != nil {
		return nil, fmt.Errorf("failed to get attachment %s: %w", attachmentID, err)
	}
	if attachment.Size > MaxAttachmentSize {
		return nil, fmt.Errorf("attachment size %d exceeds maximum size %d", attachment.Size, MaxAttachmentSize)
	}
	return decodeBody(attachment.Data)
}

// doWithRetry runs one Gmail API call with a small retry budget for
// transient failures.
func doWithRetry[T any](ctx context.Context, call func(opts ...googleapi.CallOption) (T, error)) (T, error) {
	return retry.DoWithData(
		func() (T, error) { return call() },
		retry.Context(ctx),
		retry.Attempts(apiRetries),
		retry.LastErrorOnly(true),
	)
}

// decodeBody decodes base64url-encoded data (Gmail API uses RFC 4648
// base64url), falling back to standard base64.
func decodeBody(data string) ([]byte, error) {
	decoded, err := base64.URLEncoding.DecodeString(data)
	if err == nil {
		return decoded, nil
	}
	decoded, err = base64.StdEncoding.DecodeString(data)
	if err != nil {
		return nil, fmt.Errorf("failed to decode attachment data: %w", err)
	}
	return decoded, nil
}

// walkParts recursively walks through message parts
func walkParts(part *gmail.MessagePart, fn func(*gmail.MessagePart)) {
	if part == nil {
		return
	}
	fn(part)
	for _, subpart := range part.Parts {
		walkParts(subpart, fn)
	}
}

// isJPGName reports whether a filename carries a JPG extension.
func isJPGName(name string) bool {
	lower := strings.ToLower(name)
	return strings.HasSuffix(lower, ".jpg") || strings.HasSuffix(lower, ".jpeg")
}

// SanitizeFilename sanitizes a filename to prevent path traversal attacks
func SanitizeFilename(filename string) string {
	filename = strings.ReplaceAll(filename, "/", "_")
	filename = strings.ReplaceAll(filename, "\\", "_")
	filename = strings.ReplaceAll(filename, "..", "_")
	return filename
}
