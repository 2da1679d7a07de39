package main

import (
	"encoding/json"
	"fmt"
	"os"

	api "pontifex/pkg/pontifex"
)

func loadRunRequestFromConfig(path string) (api.RunRequest, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return api.RunRequest{}, err
	}
	var raw map[string]any
	if err := json.Unmarshal(data, &raw); err != nil {
		return api.RunRequest{}, err
	}

	var req api.RunRequest
	if v, ok := asString(raw["run_id"]); ok {
		req.RunID = v
	}
	if v, ok := asInt(raw["population"]); ok {
		req.Population = v
	}
	if v, ok := asInt(raw["survivors"]); ok {
		req.Survivors = v
	}
	if v, ok := asInt(raw["generations"]); ok {
		req.Generations = v
	}
	if v, ok := asInt64(raw["seed"]); ok {
		req.Seed = v
	}
	if v, ok := asInt(raw["workers"]); ok {
		req.Workers = v
	}
	if v, ok := asFloat64(raw["keep_probability"]); ok {
		req.KeepProbability = v
	}
	if v, ok := asFloat64(raw["seed_spread"]); ok {
		req.SeedSpread = v
	}
	if v, ok := asFloat64(raw["load_start_x"]); ok {
		req.LoadStart.X = v
	}
	if v, ok := asFloat64(raw["load_start_y"]); ok {
		req.LoadStart.Y = v
	}
	if v, ok := asFloat64(raw["load_target_x"]); ok {
		req.LoadTargetX = v
	}
	if v, ok := asFloat64(raw["load_speed"]); ok {
		req.LoadSpeed = v
	}
	if v, ok := asFloat64(raw["load_mass"]); ok {
		req.LoadMass = v
	}
	if v, ok := asFloat64(raw["load_radius"]); ok {
		req.LoadRadius = v
	}
	if v, ok := asInt(raw["max_steps"]); ok {
		req.MaxSteps = v
	}
	return req, nil
}

func loadOrDefaultRunRequest(configPath string) (api.RunRequest, error) {
	if configPath == "" {
		return api.RunRequest{}, nil
	}
	req, err := loadRunRequestFromConfig(configPath)
	if err != nil {
		return api.RunRequest{}, fmt.Errorf("load config: %w", err)
	}
	return req, nil
}

// overrideFromFlags lets explicitly-set flags win over config file values.
func overrideFromFlags(req *api.RunRequest, set map[string]bool, flagValue map[string]any) {
	for name := range set {
		v, ok := flagValue[name]
		if !ok {
			continue
		}
		switch name {
		case "run-id":
			req.RunID = v.(string)
		case "pop":
			req.Population = v.(int)
		case "survivors":
			req.Survivors = v.(int)
		case "gens":
			req.Generations = v.(int)
		case "seed":
			req.Seed = v.(int64)
		case "workers":
			req.Workers = v.(int)
		case "keep-probability":
			req.KeepProbability = v.(float64)
		case "seed-spread":
			req.SeedSpread = v.(float64)
		case "load-start-x":
			req.LoadStart.X = v.(float64)
		case "load-start-y":
			req.LoadStart.Y = v.(float64)
		case "load-target-x":
			req.LoadTargetX = v.(float64)
		case "load-speed":
			req.LoadSpeed = v.(float64)
		case "load-mass":
			req.LoadMass = v.(float64)
		case "load-radius":
			req.LoadRadius = v.(float64)
		case "max-steps":
			req.MaxSteps = v.(int)
		}
	}
}

func asString(v any) (string, bool) {
	s, ok := v.(string)
	return s, ok
}

func asInt(v any) (int, bool) {
	switch x := v.(type) {
	case int:
		return x, true
	case float64:
		return int(x), true
	default:
		return 0, false
	}
}

func asInt64(v any) (int64, bool) {
	switch x := v.(type) {
	case int64:
		return x, true
	case int:
		return int64(x), true
	case float64:
		return int64(x), true
	default:
		return 0, false
	}
}

func asFloat64(v any) (float64, bool) {
	switch x := v.(type) {
	case float64:
		return x, true
	case int:
		return float64(x), true
	default:
		return 0, false
	}
}
