package rest

import (
	"bytes"
	"context"
	"crypto/tls"
	"crypto/x509"
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strings"

	kprof "github.com/opst/vocabfab/cmd/vocab/config/profiles"
	"github.com/opst/vocabfab/pkg/domain"
	"github.com/opst/vocabfab/pkg/provision"
)

// VocabClient calls actions of vocabd.
//
// Requests are authenticated with the api key of the profile, not by actor.
// When actor is domain.Anonymous, requests are sent without the key.
type VocabClient interface {
	provision.Actions

	// ListVocabularies returns all Vocabularies.
	ListVocabularies(ctx context.Context, actor domain.Actor) ([]domain.Vocabulary, error)

	// DeleteVocabulary removes the Vocabulary, with its Terms.
	DeleteVocabulary(ctx context.Context, actor domain.Actor, nameOrId string) error

	// DeleteTerm removes the Term from the Vocabulary.
	DeleteTerm(ctx context.Context, actor domain.Actor, vocabularyId string, nameOrId string) error

	// GetSiteUser returns the Actor of the site. It requires sysadmin.
	GetSiteUser(ctx context.Context, actor domain.Actor) (domain.Actor, error)
}

// KeyHolder is the Actor authenticated by the api key of the profile.
//
// Use it when who has the key is not known yet.
var KeyHolder = domain.Actor{Name: "api key holder"}

type client struct {
	httpclient *http.Client
	api        string
	apiKey     string
}

// NewClient creates a new VocabClient for the profile.
//
// # Returns
//
// - VocabClient: created client
//
// - error: If given profile is invalid, ErrProfileInvalid is returned.
func NewClient(prof *kprof.VocabProfile) (VocabClient, error) {
	if err := prof.Verify(); err != nil {
		return nil, err
	}
	httpclient := new(http.Client)

	if prof.Cert.CA != "" {
		hc, err := trustCa(httpclient, []string{prof.Cert.CA})
		if err != nil {
			return nil, err
		}
		httpclient = hc
	}

	return &client{
		httpclient: httpclient,
		api:        strings.TrimSuffix(prof.ApiRoot, "/"),
		apiKey:     prof.ApiKey,
	}, nil
}

func trustCa(hc *http.Client, cacerts []string) (*http.Client, error) {
	if hc.Transport == nil {
		hc.Transport = http.DefaultTransport
	}
	tran, ok := hc.Transport.(*http.Transport)
	if !ok {
		return nil, errors.New("failed to add ca cert")
	}
	tran = tran.Clone()

	tcc := tran.TLSClientConfig.Clone()
	if tcc == nil {
		tcc = &tls.Config{}
	}
	if tcc.RootCAs == nil {
		tcc.RootCAs = x509.NewCertPool()
	}
	for _, ca := range cacerts {
		bin, err := base64.StdEncoding.DecodeString(ca)
		if err != nil {
			return nil, err
		}
		if !tcc.RootCAs.AppendCertsFromPEM(bin) {
			return nil, errors.New("failed to add cert")
		}
	}

	tran.TLSClientConfig = tcc
	hc.Transport = tran
	return hc, nil
}

// get calls a reading action with query.
func get[T any](ctx context.Context, c *client, actor domain.Actor, name string, query url.Values) (T, error) {
	u := c.api + "/" + name
	if len(query) != 0 {
		u += "?" + query.Encode()
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return *new(T), err
	}
	return do[T](c, actor, name, req)
}

// post calls an action with JSON payload.
func post[T any](ctx context.Context, c *client, actor domain.Actor, name string, payload any) (T, error) {
	buf, err := json.Marshal(payload)
	if err != nil {
		return *new(T), err
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.api+"/"+name, bytes.NewReader(buf))
	if err != nil {
		return *new(T), err
	}
	req.Header.Set("Content-Type", "application/json")
	return do[T](c, actor, name, req)
}

func do[T any](c *client, actor domain.Actor, name string, req *http.Request) (T, error) {
	if c.apiKey != "" && !actor.IsAnonymous() {
		req.Header.Set("Authorization", c.apiKey)
	}
	resp, err := c.httpclient.Do(req)
	if err != nil {
		return *new(T), fmt.Errorf("%s: %w", name, err)
	}
	defer resp.Body.Close()
	return unmarshalEnvelope[T](resp, name)
}
