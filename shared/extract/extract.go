// Package extract recovers the JSON object a model was asked to produce from
// its raw text reply.
//
// Models tend to wrap the object in prose or a markdown fence. The recovery is a
// greedy heuristic: the candidate is everything from the first '{' to the last
// '}'. Stray braces in prose around the object break it.
package extract

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"regexp"
	"strings"
)

var ErrMalformedResponse = errors.New("malformed model response")

// fenceOpen matches an opening fence with an optional language keyword.
var fenceOpen = regexp.MustCompile("```[A-Za-z0-9_+-]*")

const fence = "```"

// Object returns the embedded JSON object as a generic map. Numbers are kept as
// json.Number so integers survive without float rounding.
func Object(raw string) (map[string]any, error) {
	candidate, err := candidate(raw)
	if err != nil {
		return nil, err
	}

	decoder := json.NewDecoder(strings.NewReader(candidate))
	decoder.UseNumber()

	var out map[string]any
	if err := decoder.Decode(&out); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMalformedResponse, err)
	}

	if _, err := decoder.Token(); err != io.EOF {
		return nil, fmt.Errorf("%w: trailing data after JSON object", ErrMalformedResponse)
	}

	return out, nil
}

// Decode unmarshals the embedded JSON object into v.
func Decode(raw string, v any) error {
	candidate, err := candidate(raw)
	if err != nil {
		return err
	}

	if err := json.Unmarshal([]byte(candidate), v); err != nil {
		return fmt.Errorf("%w: %v", ErrMalformedResponse, err)
	}

	return nil
}

func candidate(raw string) (string, error) {
	text := stripFence(raw)

	start := strings.IndexByte(text, '{')
	end := strings.LastIndexByte(text, '}')
	if start < 0 || end < start {
		return "", fmt.Errorf("%w: no JSON object found", ErrMalformedResponse)
	}

	return text[start : end+1], nil
}

// stripFence removes a fence framing the payload. Fences that only appear
// inside the object, e.g. in generated file contents, are left alone.
func stripFence(text string) string {
	firstBrace := strings.IndexByte(text, '{')

	open := fenceOpen.FindStringIndex(text)
	if open == nil || (firstBrace >= 0 && open[0] > firstBrace) {
		return text
	}

	inner := text[open[1]:]

	closing := strings.LastIndex(inner, fence)
	if closing >= 0 && closing > strings.LastIndexByte(inner, '}') {
		inner = inner[:closing]
	}

	return strings.TrimSpace(inner)
}
