package main

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/desertthunder/favtunes/internal/services"
	"github.com/desertthunder/favtunes/internal/shared"
	"github.com/urfave/cli/v3"
)

// apiClient returns the injected client or one pointed at --url or the configured server address.
func (r *Runner) apiClient(cmd *cli.Command) *services.APIService {
	if r.api != nil && !cmd.IsSet("url") {
		return r.api
	}

	base := cmd.String("url")
	if base == "" {
		base = "http://" + r.config.Server.Addr()
	}
	return services.NewAPIService(base, r.httpClient)
}

func (r *Runner) apiRequest(ctx context.Context, cmd *cli.Command, method string, requireData bool) error {
	path := cmd.StringArg("path")
	if path == "" {
		return fmt.Errorf("%w: path", shared.ErrMissingArgument)
	}

	var body []byte
	if method != http.MethodGet {
		data := cmd.String("data")
		if data == "" && requireData {
			return fmt.Errorf("%w: --data flag is required", shared.ErrMissingArgument)
		}
		if data != "" {
			var jsonTest any
			if err := json.Unmarshal([]byte(data), &jsonTest); err != nil {
				return fmt.Errorf("%w: data is not valid JSON: %v", shared.ErrInvalidInput, err)
			}
			body = []byte(data)
		}
	}

	r.logger.Info("API request", "method", method, "path", path)

	resp, err := r.apiClient(cmd).Do(ctx, method, path, body)
	if err != nil {
		return fmt.Errorf("%w: %v", shared.ErrAPIRequest, err)
	}

	if !resp.OK() {
		return fmt.Errorf("%w: status %d, body: %s", shared.ErrAPIRequest, resp.StatusCode, string(resp.Body))
	}

	if resp.IsJSON {
		return r.writeJSON(resp.JSONData, !cmd.Bool("json"))
	}

	r.output.Write(resp.Body)
	r.output.Write([]byte("\n"))
	return nil
}

// APIGet makes a direct GET request to the API
func (r *Runner) APIGet(ctx context.Context, cmd *cli.Command) error {
	return r.apiRequest(ctx, cmd, http.MethodGet, false)
}

// APIPost makes a direct POST request to the API
func (r *Runner) APIPost(ctx context.Context, cmd *cli.Command) error {
	return r.apiRequest(ctx, cmd, http.MethodPost, true)
}

// APIPut makes a direct PUT request to the API
func (r *Runner) APIPut(ctx context.Context, cmd *cli.Command) error {
	return r.apiRequest(ctx, cmd, http.MethodPut, true)
}

// APIDelete makes a direct DELETE request to the API
func (r *Runner) APIDelete(ctx context.Context, cmd *cli.Command) error {
	return r.apiRequest(ctx, cmd, http.MethodDelete, false)
}
