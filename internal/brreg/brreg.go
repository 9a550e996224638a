// Package brreg looks up Norwegian companies in the Brønnøysund registry
// so contact forms can be auto-filled from an organization number.
package brreg

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"time"
)

// Unit is the subset of an Enhetsregisteret entity the contact form uses.
type Unit struct {
	OrgNumber  string
	Name       string
	Street     string
	PostalCode string
	City       string
	Country    string
}

type enhetResponse struct {
	Organisasjonsnummer string `json:"organisasjonsnummer"`
	Navn                string `json:"navn"`
	Forretningsadresse  struct {
		Adresse    []string `json:"adresse"`
		Postnummer string   `json:"postnummer"`
		Poststed   string   `json:"poststed"`
		Land       string   `json:"land"`
	} `json:"forretningsadresse"`
}

// Client queries the open Enhetsregisteret API.
type Client struct {
	base string
	http *http.Client
}

func New(baseURL string) *Client {
	return &Client{
		base: strings.TrimRight(baseURL, "/"),
		http: &http.Client{Timeout: 10 * time.Second},
	}
}

// ShouldLookup reports whether the org-number input is ready to query:
// exactly nine digits, ignoring spaces.
func ShouldLookup(input string) bool {
	digits := strings.ReplaceAll(strings.TrimSpace(input), " ", "")
	if len(digits) != 9 {
		return false
	}
	for _, r := range digits {
		if r < '0' || r > '9' {
			return false
		}
	}
	return true
}

// Lookup fetches a unit by organization number.
func (c *Client) Lookup(ctx context.Context, orgNumber string) (Unit, error) {
	orgNumber = strings.ReplaceAll(strings.TrimSpace(orgNumber), " ", "")
	url := c.base + "/enhetsregisteret/api/enheter/" + orgNumber
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return Unit{}, fmt.Errorf("build request: %w", err)
	}
	resp, err := c.http.Do(req)
	if err != nil {
		return Unit{}, fmt.Errorf("brreg lookup: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusNotFound {
		return Unit{}, fmt.Errorf("org number %s not found", orgNumber)
	}
	if resp.StatusCode != http.StatusOK {
		return Unit{}, fmt.Errorf("brreg lookup: status %d", resp.StatusCode)
	}

	var body enhetResponse
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		return Unit{}, fmt.Errorf("decode brreg response: %w", err)
	}

	u := Unit{
		OrgNumber:  body.Organisasjonsnummer,
		Name:       body.Navn,
		PostalCode: body.Forretningsadresse.Postnummer,
		City:       body.Forretningsadresse.Poststed,
		Country:    body.Forretningsadresse.Land,
	}
	if len(body.Forretningsadresse.Adresse) > 0 {
		u.Street = strings.Join(body.Forretningsadresse.Adresse, ", ")
	}
	if u.Country == "" {
		u.Country = "Norge"
	}
	return u, nil
}
