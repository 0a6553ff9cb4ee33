package chain

import (
	"fmt"
	"os"
	"sync"

	"gopkg.in/yaml.v3"

	"decodedTx/internal/model"
)

// Registry resolves a chain name to its display metadata.
type Registry interface {
	Lookup(name string) (model.ChainDisplayInfo, bool)
}

// StaticRegistry is an in-memory Registry keyed by exact chain name.
type StaticRegistry struct {
	mu     sync.RWMutex
	chains map[string]model.ChainDisplayInfo
	order  []string
}

func NewStaticRegistry() *StaticRegistry {
	return &StaticRegistry{chains: make(map[string]model.ChainDisplayInfo)}
}

// Register adds a chain. Names must be unique.
func (r *StaticRegistry) Register(info model.ChainDisplayInfo) error {
	if info.Name == "" {
		return fmt.Errorf("chain name is required")
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.chains[info.Name]; exists {
		return fmt.Errorf("chain %q already registered", info.Name)
	}
	r.chains[info.Name] = info
	r.order = append(r.order, info.Name)
	return nil
}

// Set adds a chain or replaces the entry with the same name, keeping its position.
func (r *StaticRegistry) Set(info model.ChainDisplayInfo) error {
	if info.Name == "" {
		return fmt.Errorf("chain name is required")
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.chains[info.Name]; !exists {
		r.order = append(r.order, info.Name)
	}
	r.chains[info.Name] = info
	return nil
}

// Merge overlays every chain of other onto r.
func (r *StaticRegistry) Merge(other *StaticRegistry) error {
	for _, info := range other.All() {
		if err := r.Set(info); err != nil {
			return err
		}
	}
	return nil
}

func (r *StaticRegistry) Lookup(name string) (model.ChainDisplayInfo, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	info, ok := r.chains[name]
	return info, ok
}

// All returns the registered chains in registration order.
func (r *StaticRegistry) All() []model.ChainDisplayInfo {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]model.ChainDisplayInfo, 0, len(r.order))
	for _, name := range r.order {
		out = append(out, r.chains[name])
	}
	return out
}

var defaultChains = []model.ChainDisplayInfo{
	{Name: "eth-mainnet", Label: "Ethereum Mainnet", ColorTheme: model.ColorTheme{Hex: "#627EEA"}},
	{Name: "matic-mainnet", Label: "Polygon Mainnet", ColorTheme: model.ColorTheme{Hex: "#8247E5"}},
	{Name: "bsc-mainnet", Label: "BNB Smart Chain", ColorTheme: model.ColorTheme{Hex: "#F0B90B"}},
	{Name: "avalanche-mainnet", Label: "Avalanche C-Chain", ColorTheme: model.ColorTheme{Hex: "#E84142"}},
	{Name: "arbitrum-mainnet", Label: "Arbitrum One", ColorTheme: model.ColorTheme{Hex: "#28A0F0"}},
	{Name: "optimism-mainnet", Label: "Optimism Mainnet", ColorTheme: model.ColorTheme{Hex: "#FF0420"}},
	{Name: "base-mainnet", Label: "Base Mainnet", ColorTheme: model.ColorTheme{Hex: "#0052FF"}},
	{Name: "fantom-mainnet", Label: "Fantom Opera", ColorTheme: model.ColorTheme{Hex: "#1969FF"}},
}

// DefaultRegistry returns a registry holding the built-in chain table.
func DefaultRegistry() *StaticRegistry {
	r := NewStaticRegistry()
	for _, info := range defaultChains {
		_ = r.Register(info)
	}
	return r
}

type registryFile struct {
	Chains []model.ChainDisplayInfo `yaml:"chains"`
}

// LoadRegistryFile reads a YAML chain table of the form `chains: [{name, label, color_theme: {hex}}]`.
func LoadRegistryFile(path string) (*StaticRegistry, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read chains file: %w", err)
	}

	var file registryFile
	if err := yaml.Unmarshal(data, &file); err != nil {
		return nil, fmt.Errorf("parse chains file: %w", err)
	}

	r := NewStaticRegistry()
	for _, info := range file.Chains {
		if err := r.Register(info); err != nil {
			return nil, fmt.Errorf("chains file %s: %w", path, err)
		}
	}
	return r, nil
}

// LoadRegistry returns the built-in table, with the chains of the YAML file at path laid over it when
// path is set. File entries replace built-in entries of the same name and add new ones.
func LoadRegistry(path string) (*StaticRegistry, error) {
	r := DefaultRegistry()
	if path == "" {
		return r, nil
	}

	file, err := LoadRegistryFile(path)
	if err != nil {
		return nil, err
	}
	if err := r.Merge(file); err != nil {
		return nil, fmt.Errorf("merge chains file: %w", err)
	}
	return r, nil
}
