package ipc

import (
	"net"
	"net/rpc"
	"net/rpc/jsonrpc"
	"time"
)

// Client provides RPC access to the daemon.
type Client struct {
	conn   net.Conn
	client *rpc.Client
}

// Dial connects to the IPC server at the given socket path.
func Dial(path string) (*Client, error) {
	conn, err := net.DialTimeout("unix", path, 2*time.Second)
	if err != nil {
		return nil, err
	}
	rpcClient := rpc.NewClientWithCodec(jsonrpc.NewClientCodec(conn))
	return &Client{conn: conn, client: rpcClient}, nil
}

// Close closes the underlying connection.
func (c *Client) Close() error {
	if c.client != nil {
		_ = c.client.Close()
	}
	if c.conn != nil {
		return c.conn.Close()
	}
	return nil
}

// Start requests the daemon to start processing.
func (c *Client) Start() (*StartResponse, error) {
	var resp StartResponse
	if err := c.client.Call("Docflow.Start", StartRequest{}, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

// Stop requests the daemon to stop processing.
func (c *Client) Stop() (*StopResponse, error) {
	var resp StopResponse
	if err := c.client.Call("Docflow.Stop", StopRequest{}, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

// Status retrieves the daemon status.
func (c *Client) Status() (*StatusResponse, error) {
	var resp StatusResponse
	if err := c.client.Call("Docflow.Status", StatusRequest{}, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

// Ingest registers a new document with the daemon.
func (c *Client) Ingest(name, locator string) (*IngestResponse, error) {
	var resp IngestResponse
	req := IngestRequest{Name: name, Locator: locator}
	if err := c.client.Call("Docflow.Ingest", req, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

// Trigger runs a single stage against a document.
func (c *Client) Trigger(id, stageName string) (*TriggerResponse, error) {
	var resp TriggerResponse
	req := TriggerRequest{ID: id, Stage: stageName}
	if err := c.client.Call("Docflow.Trigger", req, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

// List returns documents optionally filtered by statuses.
func (c *Client) List(statuses []string) (*ListResponse, error) {
	var resp ListResponse
	req := ListRequest{Statuses: statuses}
	if err := c.client.Call("Docflow.List", req, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

// Describe returns details for a single document.
func (c *Client) Describe(id string) (*DescribeResponse, error) {
	var resp DescribeResponse
	req := DescribeRequest{ID: id}
	if err := c.client.Call("Docflow.Describe", req, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

// Remove deletes a document from the registry.
func (c *Client) Remove(id string) (*RemoveResponse, error) {
	var resp RemoveResponse
	req := RemoveRequest{ID: id}
	if err := c.client.Call("Docflow.Remove", req, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

// Clear removes all documents.
func (c *Client) Clear() (*ClearResponse, error) {
	var resp ClearResponse
	if err := c.client.Call("Docflow.Clear", ClearRequest{}, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

// ClearRouted removes only routed documents.
func (c *Client) ClearRouted() (*ClearRoutedResponse, error) {
	var resp ClearRoutedResponse
	if err := c.client.Call("Docflow.ClearRouted", ClearRoutedRequest{}, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

// Health returns registry diagnostics.
func (c *Client) Health() (*HealthResponse, error) {
	var resp HealthResponse
	if err := c.client.Call("Docflow.Health", HealthRequest{}, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

// TestNotification triggers a notification test via the daemon.
func (c *Client) TestNotification() (*TestNotificationResponse, error) {
	var resp TestNotificationResponse
	if err := c.client.Call("Docflow.TestNotification", TestNotificationRequest{}, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}
