package backend

import (
	"context"
	"encoding/json"
	"fmt"
	"net/url"
	"time"

	"finjar/internal/core"
)

// jarListEnvelope tolerates both response shapes the backend has shipped:
// a bare array and an object wrapping it under "jars".
type jarListEnvelope struct {
	Jars []rawJar
}

func (e *jarListEnvelope) UnmarshalJSON(data []byte) error {
	var bare []rawJar
	if err := json.Unmarshal(data, &bare); err == nil {
		e.Jars = bare
		return nil
	}
	var wrapped struct {
		Jars []rawJar `json:"jars"`
	}
	if err := json.Unmarshal(data, &wrapped); err != nil {
		return err
	}
	e.Jars = wrapped.Jars
	return nil
}

// ListJars fetches the current user's jars, normalized to the canonical
// domain shape.
func (c *Client) ListJars(ctx context.Context) ([]core.Jar, error) {
	var envelope jarListEnvelope
	if err := c.get(ctx, "/api/jars?flat=1", &envelope); err != nil {
		return nil, fmt.Errorf("list jars: %w", err)
	}

	jars := make([]core.Jar, 0, len(envelope.Jars))
	for _, raw := range envelope.Jars {
		jars = append(jars, normalizeJar(raw))
	}
	return jars, nil
}

// ListDeposits fetches all deposits for one jar, each tagged with the jar's
// ID and title. fetchedAt stamps deposits whose record carries no usable
// date.
func (c *Client) ListDeposits(ctx context.Context, jar core.Jar, fetchedAt time.Time) ([]core.Deposit, error) {
	var raws []rawDeposit
	path := "/api/deposits/jar/" + url.PathEscape(jar.ID)
	if err := c.get(ctx, path, &raws); err != nil {
		return nil, fmt.Errorf("list deposits for jar %s: %w", jar.ID, err)
	}

	deposits := make([]core.Deposit, 0, len(raws))
	for _, raw := range raws {
		deposits = append(deposits, normalizeDeposit(raw, jar.ID, jar.Title, fetchedAt))
	}
	return deposits, nil
}
