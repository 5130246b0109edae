package migrate

import (
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"

	"github.com/schemaforge/schemaforge"
	"github.com/schemaforge/schemaforge/ioformat"
	"github.com/schemaforge/schemaforge/model"
)

// BackupSuffix is appended to a data file's path for its pre-migration
// copy (§4.5 execution step 1).
const BackupSuffix = ".backup"

// jsonRecord mirrors ioformat's yamlRecord for JSON data files.
type jsonRecord struct {
	Class string         `json:"class"`
	ID    string         `json:"id,omitempty"`
	Data  map[string]any `json:"data"`
}

// LoadDataFile parses path as YAML or JSON, selected by extension (§4.5
// "parse the data file (YAML or JSON by extension)").
func LoadDataFile(path string) ([]ioformat.DataInstance, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, schemaforge.NewIoError(path, err)
	}
	switch strings.ToLower(filepath.Ext(path)) {
	case ".json":
		var records []jsonRecord
		if err := json.Unmarshal(data, &records); err != nil {
			return nil, schemaforge.NewParseError(path, err.Error())
		}
		out := make([]ioformat.DataInstance, 0, len(records))
		for _, rec := range records {
			out = append(out, ioformat.DataInstance{ClassName: rec.Class, Data: rec.Data, ID: rec.ID})
		}
		return out, nil
	default:
		instances, err := ioformat.YAMLLoader{}.LoadBytes(data, nil, nil)
		if err != nil {
			return nil, err
		}
		return instances, nil
	}
}

// SaveDataFile writes instances back to path in the format its extension
// selects.
func SaveDataFile(path string, instances []ioformat.DataInstance) error {
	var data []byte
	var err error
	switch strings.ToLower(filepath.Ext(path)) {
	case ".json":
		records := make([]jsonRecord, 0, len(instances))
		for _, inst := range instances {
			records = append(records, jsonRecord{Class: inst.ClassName, ID: inst.ID, Data: inst.Data})
		}
		data, err = json.MarshalIndent(records, "", "  ")
		if err != nil {
			return schemaforge.NewGeneratorError("json-data", "marshal failed", err)
		}
		data = append(data, '\n')
	default:
		data, err = ioformat.YAMLDumper{}.DumpBytes(instances, nil, nil)
		if err != nil {
			return err
		}
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return schemaforge.NewIoError(path, err)
	}
	return nil
}

// BackupFile copies path to path+BackupSuffix, byte for byte, before any
// mutation touches it. Restoring the backup afterwards leaves the data
// file byte-identical to the input.
func BackupFile(path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return schemaforge.NewIoError(path, err)
	}
	if err := os.WriteFile(path+BackupSuffix, data, 0o644); err != nil {
		return schemaforge.NewIoError(path+BackupSuffix, err)
	}
	return nil
}

// RestoreBackup copies path+BackupSuffix back over path, implementing the
// RestoreBackup rollback strategy (§4.5 execution step 3).
func RestoreBackup(path string) error {
	data, err := os.ReadFile(path + BackupSuffix)
	if err != nil {
		return schemaforge.NewIoError(path+BackupSuffix, err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return schemaforge.NewIoError(path, err)
	}
	return nil
}

// ExecuteFile runs plan against the instances stored in dataPath: it loads
// the file, takes a .backup copy (unless dry-running), executes the plan,
// and writes the transformed instances back on success. On failure the
// backup is restored over the data file, so a rolled-back run leaves the
// file byte-identical to the input.
func ExecuteFile(ctx context.Context, plan *Plan, schema *model.Schema, dataPath string, opts ExecuteOptions) (*model.Schema, *ExecutionReport, error) {
	if opts.Perf != nil && opts.Perf.MaxFileSize > 0 {
		info, err := os.Stat(dataPath)
		if err != nil {
			return nil, nil, schemaforge.NewIoError(dataPath, err)
		}
		if info.Size() > opts.Perf.MaxFileSize {
			return nil, nil, schemaforge.NewConfigError("max_file_size", info.Size(),
				"data file exceeds the declared size constraint")
		}
	}

	instances, err := LoadDataFile(dataPath)
	if err != nil {
		return nil, nil, err
	}

	if !opts.DryRun {
		if err := BackupFile(dataPath); err != nil {
			return nil, nil, err
		}
	}

	outSchema, outInstances, report, execErr := Execute(ctx, plan, schema, instances, opts)
	if execErr != nil {
		if !opts.DryRun {
			if restoreErr := RestoreBackup(dataPath); restoreErr != nil {
				return outSchema, report, schemaforge.NewAggregateError(execErr, restoreErr)
			}
		}
		return outSchema, report, execErr
	}

	if !opts.DryRun {
		if err := SaveDataFile(dataPath, outInstances); err != nil {
			return outSchema, report, err
		}
	}
	return outSchema, report, nil
}
