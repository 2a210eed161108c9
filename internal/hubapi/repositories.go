package hubapi

import (
	"context"
	"net/http"
	"net/url"
	"strconv"
)

// repositoriesPath returns the base path for repositories owned by the user
// (org == "") or by the given organization.
func repositoriesPath(org string) string {
	if org == "" {
		return "/repositories/user"
	}
	return "/repositories/org/" + url.PathEscape(org)
}

// RepositoriesQuery filters a repository search. User and Org restrict the
// results to one owner; when both are empty all repositories match.
type RepositoriesQuery struct {
	Offset int
	Limit  int
	Name   string
	User   string
	Org    string
	Kinds  []RepositoryKind
}

func (q RepositoriesQuery) values() url.Values {
	v := url.Values{}
	v.Set("offset", strconv.Itoa(q.Offset))
	v.Set("limit", strconv.Itoa(q.Limit))
	if q.Name != "" {
		v.Set("name", q.Name)
	}
	if q.User != "" {
		v.Set("user", q.User)
	}
	if q.Org != "" {
		v.Set("org", q.Org)
	}
	for _, k := range q.Kinds {
		v.Add("kind", strconv.Itoa(int(k)))
	}
	return v
}

// RepositoriesPage is one page of a repository search.
type RepositoriesPage struct {
	Items []Repository
	Total int
}

// SearchRepositories returns one page of repositories matching q.
func (c *Client) SearchRepositories(ctx context.Context, q RepositoriesQuery) (*RepositoriesPage, error) {
	var items []Repository
	resp, err := c.get(ctx, "SearchRepositories", "/repositories/search", q.values(), &items)
	if err != nil {
		return nil, err
	}
	return &RepositoriesPage{Items: items, Total: paginationTotal(resp, len(items))}, nil
}

// AddRepository registers a repository for the user or org.
func (c *Client) AddRepository(ctx context.Context, r Repository, org string) error {
	return c.send(ctx, "AddRepository", http.MethodPost, repositoriesPath(org), r)
}

// UpdateRepository edits a repository owned by the user or org.
func (c *Client) UpdateRepository(ctx context.Context, r Repository, org string) error {
	return c.send(ctx, "UpdateRepository", http.MethodPut, repositoriesPath(org)+"/"+url.PathEscape(r.Name), r)
}

// DeleteRepository removes a repository owned by the user or org.
func (c *Client) DeleteRepository(ctx context.Context, name, org string) error {
	return c.send(ctx, "DeleteRepository", http.MethodDelete, repositoriesPath(org)+"/"+url.PathEscape(name), nil)
}

// TransferRepository moves a repository from its current owner (fromOrg, or
// the user) to toOrg, or to the user when toOrg is empty.
func (c *Client) TransferRepository(ctx context.Context, name, fromOrg, toOrg string) error {
	_, err := c.f.Do(ctx, Request{
		Op:     "TransferRepository",
		Method: http.MethodPut,
		Path:   repositoriesPath(fromOrg) + "/" + url.PathEscape(name) + "/transfer",
		Query:  scopeQuery(toOrg),
	}, nil)
	return err
}

// ClaimRepositoryOwnership requests ownership of a repository for the user
// or the given org.
func (c *Client) ClaimRepositoryOwnership(ctx context.Context, name, org string) error {
	_, err := c.f.Do(ctx, Request{
		Op:     "ClaimRepositoryOwnership",
		Method: http.MethodPut,
		Path:   "/repositories/" + url.PathEscape(name) + "/claim-ownership",
		Query:  scopeQuery(org),
	}, nil)
	return err
}
