package main

import (
	"fmt"
	"sort"
	"strings"
	"time"

	"docflow/internal/ipc"
)

func buildDocumentStatsRows(stats map[string]int) [][]string {
	if len(stats) == 0 {
		return nil
	}
	keys := make([]string, 0, len(stats))
	for key := range stats {
		keys = append(keys, key)
	}
	sort.Strings(keys)

	rows := make([][]string, 0, len(keys))
	for _, key := range keys {
		rows = append(rows, []string{formatStatusLabel(key), fmt.Sprintf("%d", stats[key])})
	}
	return rows
}

func buildDocumentListRows(docs []ipc.Document) [][]string {
	if len(docs) == 0 {
		return nil
	}
	rows := make([][]string, 0, len(docs))
	for _, doc := range docs {
		name := strings.TrimSpace(doc.Name)
		if name == "" {
			name = "Unknown"
		}
		rows = append(rows, []string{
			shortID(doc.ID),
			name,
			formatStatusLabel(doc.Status),
			formatDocumentType(doc),
			doc.Destination,
			formatDisplayTime(doc.CreatedAt),
		})
	}
	return rows
}

func formatDocumentType(doc ipc.Document) string {
	docType := strings.TrimSpace(doc.DocumentType)
	if docType == "" {
		return "-"
	}
	if doc.Confidence != nil {
		return fmt.Sprintf("%s (%.2f)", docType, *doc.Confidence)
	}
	return docType
}

func formatStatusLabel(status string) string {
	status = strings.TrimSpace(status)
	if status == "" {
		return ""
	}
	parts := strings.Split(status, "_")
	for i, part := range parts {
		lower := strings.ToLower(part)
		if lower == "" {
			continue
		}
		parts[i] = strings.ToUpper(lower[:1]) + lower[1:]
	}
	return strings.Join(parts, " ")
}

func formatDisplayTime(value string) string {
	value = strings.TrimSpace(value)
	if value == "" {
		return ""
	}
	if t, err := time.Parse(time.RFC3339, value); err == nil {
		return t.UTC().Format("2006-01-02 15:04")
	}
	if t, err := time.Parse(time.RFC3339Nano, value); err == nil {
		return t.UTC().Format("2006-01-02 15:04")
	}
	return value
}

func shortID(id string) string {
	id = strings.TrimSpace(id)
	if len(id) > 8 {
		return id[:8]
	}
	return id
}

func truncateText(value string, max int) string {
	value = strings.TrimSpace(value)
	if max <= 0 || len(value) <= max {
		return value
	}
	return value[:max] + "..."
}

func sortedMessageKeys(messages map[string]string) []string {
	keys := make([]string, 0, len(messages))
	for key := range messages {
		keys = append(keys, key)
	}
	sort.Strings(keys)
	return keys
}
