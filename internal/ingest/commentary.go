package ingest

import (
	"fmt"
	"math"
	"strings"
	"time"

	"github.com/riskibarqy/cricket-analytics/internal/domain/ingestion"
)

// NormalizeCommentary maps one commentary line. Only the text is required.
func NormalizeCommentary(raw map[string]any) (ingestion.CommentaryEntry, error) {
	text, err := firstString(raw, "", "commText", "commentary")
	if err != nil {
		return ingestion.CommentaryEntry{}, err
	}
	if text == "" {
		return ingestion.CommentaryEntry{}, ingestion.MissingField("commText")
	}
	entry := ingestion.CommentaryEntry{Text: text}

	innings, ok, err := getInt64(raw, "", "inningsId")
	if err != nil {
		return ingestion.CommentaryEntry{}, err
	}
	if ok && innings > 0 {
		n := int(innings)
		entry.Innings = &n
	}

	entry.Over, entry.Ball, err = delivery(raw)
	if err != nil {
		return ingestion.CommentaryEntry{}, err
	}

	event, err := getString(raw, "", "event")
	if err != nil {
		return ingestion.CommentaryEntry{}, err
	}
	if event != "" && !strings.EqualFold(event, "NONE") {
		entry.Event = strings.ToUpper(event)
	}

	millis, ok, err := getInt64(raw, "", "timestamp")
	if err != nil {
		return ingestion.CommentaryEntry{}, err
	}
	if ok && millis > 0 {
		at := time.UnixMilli(millis).UTC()
		entry.Timestamp = &at
	}
	return entry, nil
}

// delivery reads the over and ball. The provider sends overNumber as 19.6
// with the ball in the fraction; a separate ballNumber wins when present.
func delivery(raw map[string]any) (*int, *int, error) {
	text, err := getString(raw, "", "overNumber")
	if err != nil || text == "" {
		return nil, nil, err
	}
	overs, err := getFloat(raw, "", "overNumber")
	if err != nil {
		return nil, nil, err
	}
	if overs < 0 {
		return nil, nil, ingestion.TypeMismatch("overNumber", fmt.Sprintf("expected a non-negative over, got %v", overs))
	}
	over := int(math.Floor(overs))

	ball, ok, err := getInt64(raw, "", "ballNumber")
	if err != nil {
		return nil, nil, err
	}
	if !ok {
		ball = int64(math.Round((overs - float64(over)) * 10))
		if ball == 0 {
			return &over, nil, nil
		}
	}
	if ball < 0 || ball > 9 {
		return nil, nil, ingestion.TypeMismatch("ballNumber", fmt.Sprintf("expected a ball of the over, got %d", ball))
	}
	b := int(ball)
	return &over, &b, nil
}

// CommentaryEntries returns the lines of a commentary document, newest
// first as the provider sends them.
func CommentaryEntries(doc map[string]any) []map[string]any {
	return objects(doc, "commentaryList")
}
