package cmd

import (
	"fmt"
	"net/http"
	"strings"

	"github.com/spf13/cobra"

	"github.com/lsx-cli/lsx/internal/api"
	"github.com/lsx-cli/lsx/internal/dryrun"
	"github.com/lsx-cli/lsx/internal/iocontext"
	"github.com/lsx-cli/lsx/internal/outfmt"
	"github.com/lsx-cli/lsx/internal/urlparse"
	"github.com/lsx-cli/lsx/internal/validation"
)

var shorthandMethods = []string{http.MethodGet, http.MethodPost, http.MethodPut, http.MethodDelete}

var validMethods = map[string]bool{
	http.MethodGet:    true,
	http.MethodPost:   true,
	http.MethodPut:    true,
	http.MethodPatch:  true,
	http.MethodDelete: true,
}

// requestFlags are shared by "api" and the per-method shorthands.
type requestFlags struct {
	params     []string
	fields     []string
	rawFields  []string
	inputFile  string
	jsonBody   string
	apiVersion string
	silent     bool
}

func (rf *requestFlags) register(cmd *cobra.Command) {
	cmd.Flags().StringArrayVarP(&rf.params, "param", "p", nil, "Query parameter as key=value (repeatable, order kept)")
	cmd.Flags().StringArrayVarP(&rf.fields, "field", "f", nil, "Request body field as key=value (string)")
	cmd.Flags().StringArrayVarP(&rf.rawFields, "raw-field", "F", nil, "Request body field as key=value (JSON parsed)")
	cmd.Flags().StringVarP(&rf.inputFile, "input", "i", "", "Read request body from file (use - for stdin)")
	cmd.Flags().StringVarP(&rf.jsonBody, "body", "d", "", "Request body as inline JSON")
	cmd.Flags().StringVar(&rf.apiVersion, "api-version", "", "API version segment (default from settings, 2.0; 0.9 is deprecated)")
	cmd.Flags().BoolVarP(&rf.silent, "silent-response", "s", false, "Do not print the response body")
	_ = cmd.RegisterFlagCompletionFunc("api-version", func(*cobra.Command, []string, string) ([]string, cobra.ShellCompDirective) {
		return api.KnownVersions(), cobra.ShellCompDirectiveNoFileComp
	})
	flagAlias(cmd.Flags(), "api-version", "av")
	flagAlias(cmd.Flags(), "param", "query-param")
}

// options builds the request descriptor from the parsed flags.
func (rf *requestFlags) options(cmd *cobra.Command) (*api.RequestOptions, error) {
	if rf.jsonBody != "" && rf.inputFile != "" {
		return nil, fmt.Errorf("cannot use both --body and --input flags")
	}

	var params api.Query
	for _, p := range rf.params {
		key, value, err := validation.ParseKeyValue(p)
		if err != nil {
			return nil, fmt.Errorf("invalid --param: %w", err)
		}
		params = params.Add(key, value)
	}

	body, err := rf.body(cmd)
	if err != nil {
		return nil, err
	}

	version := strings.TrimSpace(rf.apiVersion)
	if !flagOrAliasChanged(cmd, "api-version") {
		version = settings.APIVersion
	}
	if version != "" {
		if err := validation.ValidateAPIVersion(version); err != nil {
			return nil, err
		}
	}

	return &api.RequestOptions{
		Params:     params,
		Body:       body,
		APIVersion: version,
	}, nil
}

// body merges --body/--input with -f/-F fields. Fields require an object.
func (rf *requestFlags) body(cmd *cobra.Command) (any, error) {
	var base any
	switch {
	case rf.jsonBody != "":
		if err := validation.ValidateJSONPayload([]byte(rf.jsonBody)); err != nil {
			return nil, err
		}
		v, err := decodeJSONValue([]byte(rf.jsonBody))
		if err != nil {
			return nil, fmt.Errorf("failed to parse --body JSON: %w", err)
		}
		base = v
	case rf.inputFile != "":
		data, err := readInput(cmd, rf.inputFile)
		if err != nil {
			return nil, err
		}
		v, err := decodeJSONValue(data)
		if err != nil {
			return nil, fmt.Errorf("failed to parse input JSON: %w", err)
		}
		base = v
	}

	if len(rf.fields) == 0 && len(rf.rawFields) == 0 {
		return base, nil
	}

	obj, ok := base.(map[string]any)
	if base == nil {
		obj, ok = map[string]any{}, true
	}
	if !ok {
		return nil, fmt.Errorf("--field/--raw-field require the request body to be a JSON object")
	}

	for _, field := range rf.fields {
		key, value, err := validation.ParseKeyValue(field)
		if err != nil {
			return nil, err
		}
		obj[key] = value
	}
	for _, field := range rf.rawFields {
		key, raw, err := validation.ParseKeyValue(field)
		if err != nil {
			return nil, fmt.Errorf("invalid raw field: %w", err)
		}
		value, err := decodeJSONValue([]byte(raw))
		if err != nil {
			return nil, fmt.Errorf("invalid JSON in raw field %q: %w", key, err)
		}
		obj[key] = value
	}
	return obj, nil
}

func newAPICmd() *cobra.Command {
	var method string
	rf := &requestFlags{}

	cmd := &cobra.Command{
		Use:     "api <path>",
		Aliases: []string{"ap"},
		Short:   "Make a raw request to any API path",
		Long: `Make a raw request to any Lightspeed Retail API path.

The path is appended to the versioned base:
  https://{domain_prefix}.vendhq.com/api/{version}{path}

A missing leading slash is added. The response body is decoded as JSON and
printed; error statuses exit non-zero with the status code and body.`,
		Example: `  # GET (default)
  lsx api /products -p page_size=50

  # POST with fields
  lsx api /customers -X POST -f first_name=Ada -f last_name=Lovelace

  # PUT with a JSON value field
  lsx api /products/123 -X PUT -F 'active=false'

  # Inline body against the deprecated 0.9 API
  lsx api /register_sales -X POST -d '{"register_id":"abc"}' --api-version 0.9

  # Body from stdin, filtered with jq
  echo '{"name":"Tee"}' | lsx api /products -X POST -i - --jq '.data.id'`,
		Args: cobra.ExactArgs(1),
		RunE: RunE(func(cmd *cobra.Command, args []string) error {
			method = strings.ToUpper(strings.TrimSpace(method))
			if !validMethods[method] {
				return fmt.Errorf("invalid HTTP method %q: must be one of GET, POST, PUT, PATCH, DELETE", method)
			}
			return runRequest(cmd, method, args[0], rf)
		}),
	}

	cmd.Flags().StringVarP(&method, "method", "X", http.MethodGet, "HTTP method (GET, POST, PUT, PATCH, DELETE)")
	rf.register(cmd)
	return cmd
}

// newMethodCmd builds "get", "post", "put" or "delete": the api command
// with the method fixed.
func newMethodCmd(method string) *cobra.Command {
	rf := &requestFlags{}
	name := strings.ToLower(method)

	cmd := &cobra.Command{
		Use:   name + " <path>",
		Short: fmt.Sprintf("Send a %s request (same as 'lsx api -X %s')", method, method),
		Example: fmt.Sprintf(`  lsx %s /products -p page_size=10
  lsx %s /consignments --json --jq '.data'`, name, name),
		Args: cobra.ExactArgs(1),
		RunE: RunE(func(cmd *cobra.Command, args []string) error {
			return runRequest(cmd, method, args[0], rf)
		}),
	}
	rf.register(cmd)
	return cmd
}

func runRequest(cmd *cobra.Command, method, path string, rf *requestFlags) error {
	opts, err := rf.options(cmd)
	if err != nil {
		return err
	}

	client, err := getClient(cmd)
	if err != nil {
		return err
	}
	if urlparse.IsURL(path) {
		if path, err = applyStoreURL(cmd, client, path, opts); err != nil {
			return err
		}
	}

	if dryrun.IsEnabled(cmd.Context()) {
		return printPreview(cmd, previewRequest(client, method, path, opts))
	}

	result, err := client.Request(cmdContext(cmd), method, path, opts)
	if err != nil {
		return err
	}

	if rf.silent {
		return nil
	}
	if isJSON(cmd) {
		return printJSON(cmd, result)
	}
	return printText(cmd, result)
}

// printText writes the response for text mode: strings raw, everything
// else as indented JSON. An empty response prints nothing.
func printText(cmd *cobra.Command, v any) error {
	if flags.Quiet || v == nil {
		return nil
	}
	out := iocontext.GetIO(cmd.Context()).Out
	if s, ok := v.(string); ok {
		_, err := fmt.Fprintln(out, s)
		return err
	}
	return outfmt.WriteJSONMaybeCompact(out, v, outfmt.IsCompact(cmd.Context()))
}

// applyStoreURL accepts a pasted https://{prefix}.vendhq.com/api/{version}/...
// URL in place of a path. Its query comes before any -p params, and its
// version applies unless --api-version was given.
func applyStoreURL(cmd *cobra.Command, client *api.Client, raw string, opts *api.RequestOptions) (string, error) {
	parsed, err := urlparse.Parse(raw)
	if err != nil {
		return "", err
	}
	if parsed.DomainPrefix != client.DomainPrefix() {
		return "", fmt.Errorf("store URL must match the configured store: URL is for %q, credentials are for %q", parsed.DomainPrefix, client.DomainPrefix())
	}
	if !flagOrAliasChanged(cmd, "api-version") {
		opts.APIVersion = parsed.APIVersion
	}
	opts.Params = append(parsed.Params, opts.Params...)
	return parsed.Path, nil
}

// previewRequest describes what client.Request would send.
func previewRequest(client *api.Client, method, path string, opts *api.RequestOptions) *dryrun.Preview {
	p := &dryrun.Preview{
		Method: method,
		URL:    client.RequestURL(path, opts),
		Headers: map[string]string{
			"Accept":        "application/json",
			"Authorization": "Bearer " + maskToken(client.Token()),
		},
	}
	if opts.HasBody() {
		p.Body = opts.Body
		p.Headers["Content-Type"] = "application/json"
	}
	switch version := opts.APIVersion; {
	case api.IsDeprecated(version):
		p.Warnings = append(p.Warnings, fmt.Sprintf("API version %s is deprecated; use %s", version, api.DefaultVersion))
	case version != "" && !api.IsKnownVersion(version):
		p.Warnings = append(p.Warnings, fmt.Sprintf("API version %s is not one of %s; it is sent unvalidated", version, strings.Join(api.KnownVersions(), ", ")))
	}
	return p
}

func printPreview(cmd *cobra.Command, p *dryrun.Preview) error {
	if isJSON(cmd) {
		return printJSON(cmd, p)
	}
	return p.Write(iocontext.GetIO(cmd.Context()).Out)
}
