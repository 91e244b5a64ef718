package client

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/url"
	"strconv"

	"github.com/bornholm/quill/internal/core/model"
	"github.com/bornholm/quill/internal/http/handler/api"
	"github.com/pkg/errors"
)

func (c *Client) GetTree(ctx context.Context) ([]model.TreeNode, error) {
	var res api.GetTreeResponse
	if err := c.jsonRequest(ctx, http.MethodGet, "/kb", nil, &res); err != nil {
		return nil, errors.WithStack(err)
	}

	return res.Nodes, nil
}

func (c *Client) GetFile(ctx context.Context, id model.NodeID) (string, error) {
	var res api.GetFileResponse
	if err := c.jsonRequest(ctx, http.MethodGet, "/files/"+url.PathEscape(string(id)), nil, &res); err != nil {
		return "", errors.WithStack(err)
	}

	return res.Content, nil
}

func (c *Client) SaveFile(ctx context.Context, id model.NodeID, content string) error {
	body, err := json.Marshal(api.SaveFileRequest{Content: content})
	if err != nil {
		return errors.WithStack(err)
	}

	var res api.SaveFileResponse
	if err := c.jsonRequest(ctx, http.MethodPost, "/files/"+url.PathEscape(string(id)), bytes.NewReader(body), &res); err != nil {
		return errors.WithStack(err)
	}

	return nil
}

func (c *Client) CreateNode(ctx context.Context, parentID model.NodeID, nodeType model.NodeType, title string) (*api.NodeResponse, error) {
	body, err := json.Marshal(api.CreateNodeRequest{
		ParentID: parentID,
		Type:     nodeType,
		Title:    title,
	})
	if err != nil {
		return nil, errors.WithStack(err)
	}

	var res api.NodeResponse
	if err := c.jsonRequest(ctx, http.MethodPost, "/create", bytes.NewReader(body), &res); err != nil {
		return nil, errors.WithStack(err)
	}

	return &res, nil
}

func (c *Client) DeleteNode(ctx context.Context, id model.NodeID) error {
	var res api.DeleteNodeResponse
	if err := c.jsonRequest(ctx, http.MethodPost, "/delete/"+url.PathEscape(string(id)), nil, &res); err != nil {
		return errors.WithStack(err)
	}

	return nil
}

func (c *Client) RenameNode(ctx context.Context, id model.NodeID, title string) (*api.NodeResponse, error) {
	body, err := json.Marshal(api.RenameNodeRequest{Title: title})
	if err != nil {
		return nil, errors.WithStack(err)
	}

	var res api.NodeResponse
	if err := c.jsonRequest(ctx, http.MethodPost, "/rename/"+url.PathEscape(string(id)), bytes.NewReader(body), &res); err != nil {
		return nil, errors.WithStack(err)
	}

	return &res, nil
}

func (c *Client) Search(ctx context.Context, query string, size int) ([]api.NodeResponse, error) {
	values := url.Values{}
	values.Set("q", query)
	if size > 0 {
		values.Set("size", strconv.Itoa(size))
	}

	var res api.SearchResponse
	if err := c.jsonRequest(ctx, http.MethodGet, "/search?"+values.Encode(), nil, &res); err != nil {
		return nil, errors.WithStack(err)
	}

	return res.Results, nil
}
