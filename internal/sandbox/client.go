package sandbox

import (
	"bytes"
	"context"
	"fmt"

	"github.com/docker/docker/api/types/container"
	"github.com/docker/docker/api/types/filters"
	"github.com/docker/docker/api/types/mount"
	"github.com/docker/docker/client"
	"github.com/docker/docker/pkg/stdcopy"
	"github.com/docker/go-units"

	"github.com/p-arndt/pfand/internal/config"
	"github.com/p-arndt/pfand/protocol"
)

type Client struct {
	docker *client.Client
}

func New() (*Client, error) {
	cli, err := client.NewClientWithOpts(client.FromEnv, client.WithAPIVersionNegotiation())
	if err != nil {
		return nil, fmt.Errorf("docker client: %w", err)
	}
	return &Client{docker: cli}, nil
}

func (c *Client) Close() error {
	return c.docker.Close()
}

// Ping verifies the Docker daemon is reachable.
func (c *Client) Ping(ctx context.Context) error {
	_, err := c.docker.Ping(ctx)
	return err
}

type CreateOpts struct {
	SlotID string
	Image  string
	Limits config.Sandbox
}

// CreateContainer creates and starts one pooled sandbox container.
func (c *Client) CreateContainer(ctx context.Context, opts CreateOpts) (string, error) {
	memBytes, err := opts.Limits.MemLimitBytes()
	if err != nil {
		return "", err
	}

	labels := map[string]string{
		protocol.LabelPrefix + "slot_id": opts.SlotID,
		protocol.LabelPrefix + "managed": "true",
	}

	resources := container.Resources{
		NanoCPUs:  int64(opts.Limits.CPULimit * 1e9),
		Memory:    memBytes,
		PidsLimit: int64Ptr(int64(opts.Limits.PidsLimit)),
	}

	hostCfg := &container.HostConfig{
		Resources:      resources,
		AutoRemove:     false,
		ReadonlyRootfs: opts.Limits.ReadonlyRootfs,
		SecurityOpt:    []string{"no-new-privileges"},
		CapDrop:        []string{"ALL"},
		Mounts: []mount.Mount{
			{
				Type:   mount.TypeTmpfs,
				Target: protocol.WorkspaceMount,
				TmpfsOptions: &mount.TmpfsOptions{
					SizeBytes: 512 * units.MiB,
				},
			},
			{
				Type:   mount.TypeTmpfs,
				Target: "/tmp",
				TmpfsOptions: &mount.TmpfsOptions{
					SizeBytes: 64 * units.MiB,
				},
			},
		},
	}

	if opts.Limits.NetworkMode == "none" {
		hostCfg.NetworkMode = "none"
	}

	containerCfg := &container.Config{
		Image:  opts.Image,
		Labels: labels,
		Tty:    false,
	}

	resp, err := c.docker.ContainerCreate(ctx, containerCfg, hostCfg, nil, nil, "pfand-"+opts.SlotID)
	if err != nil {
		return "", fmt.Errorf("container create: %w", err)
	}

	if err := c.docker.ContainerStart(ctx, resp.ID, container.StartOptions{}); err != nil {
		// Clean up on start failure.
		c.docker.ContainerRemove(ctx, resp.ID, container.RemoveOptions{Force: true})
		return "", fmt.Errorf("container start: %w", err)
	}

	return resp.ID, nil
}

// RemoveContainer force-removes a container. Missing containers are fine.
func (c *Client) RemoveContainer(ctx context.Context, containerID string) error {
	err := c.docker.ContainerRemove(ctx, containerID, container.RemoveOptions{
		Force:         true,
		RemoveVolumes: true,
	})
	if err != nil && !client.IsErrNotFound(err) {
		return fmt.Errorf("container remove: %w", err)
	}
	return nil
}

// ResetWorkspace wipes the workspace mount inside a container so the next
// lease starts from a clean slate.
func (c *Client) ResetWorkspace(ctx context.Context, containerID string) error {
	cmd := fmt.Sprintf("rm -rf %s/* %s/.[!.]* 2>/dev/null; true", protocol.WorkspaceMount, protocol.WorkspaceMount)

	execResp, err := c.docker.ContainerExecCreate(ctx, containerID, container.ExecOptions{
		Cmd:          []string{"sh", "-c", cmd},
		AttachStdout: true,
		AttachStderr: true,
	})
	if err != nil {
		return fmt.Errorf("exec create: %w", err)
	}

	attachResp, err := c.docker.ContainerExecAttach(ctx, execResp.ID, container.ExecAttachOptions{})
	if err != nil {
		return fmt.Errorf("exec attach: %w", err)
	}
	defer attachResp.Close()

	// Drain the multiplexed stream; exec is done when it closes.
	var stdoutBuf, stderrBuf bytes.Buffer
	if _, err := stdcopy.StdCopy(&stdoutBuf, &stderrBuf, attachResp.Reader); err != nil {
		return fmt.Errorf("exec read: %w", err)
	}

	inspect, err := c.docker.ContainerExecInspect(ctx, execResp.ID)
	if err != nil {
		return fmt.Errorf("exec inspect: %w", err)
	}
	if inspect.ExitCode != 0 {
		return fmt.Errorf("workspace reset exited with code %d: %s", inspect.ExitCode, stderrBuf.String())
	}

	return nil
}

// ContainerInfo holds basic info about a pooled container.
type ContainerInfo struct {
	ContainerID string
	SlotID      string
}

// ListPooledContainers returns all containers carrying pfand labels,
// running or not. Used at startup to sweep leftovers from a previous run.
func (c *Client) ListPooledContainers(ctx context.Context) ([]ContainerInfo, error) {
	f := filters.NewArgs()
	f.Add("label", protocol.LabelPrefix+"managed=true")

	containers, err := c.docker.ContainerList(ctx, container.ListOptions{
		All:     true,
		Filters: f,
	})
	if err != nil {
		return nil, fmt.Errorf("container list: %w", err)
	}

	var result []ContainerInfo
	for _, ctr := range containers {
		slotID := ctr.Labels[protocol.LabelPrefix+"slot_id"]
		if slotID == "" {
			continue
		}
		result = append(result, ContainerInfo{
			ContainerID: ctr.ID,
			SlotID:      slotID,
		})
	}
	return result, nil
}

// IsContainerRunning checks if a container is currently running.
func (c *Client) IsContainerRunning(ctx context.Context, containerID string) (bool, error) {
	info, err := c.docker.ContainerInspect(ctx, containerID)
	if err != nil {
		if client.IsErrNotFound(err) {
			return false, nil
		}
		return false, err
	}
	return info.State.Running, nil
}

func int64Ptr(v int64) *int64 {
	return &v
}
