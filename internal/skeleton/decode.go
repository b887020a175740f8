package skeleton

import (
	"fmt"

	"scene-importer/internal/binreader"
)

// minRecordSize is the smallest encoded bone: hash, empty name, parent, t, r.
const minRecordSize = 8 + 2 + 4 + 12 + 16

// Decode reads a bone table payload. Version 1 records carry no scale.
func Decode(payload []byte, version uint32) ([]Record, error) {
	r := binreader.ForVersion(payload, version)
	count, err := r.U32()
	if err != nil {
		return nil, fmt.Errorf("skeleton: bone count: %w", err)
	}
	if err := r.Need(int(count), minRecordSize); err != nil {
		return nil, fmt.Errorf("skeleton: %d bones: %w", count, err)
	}

	records := make([]Record, count)
	for i := range records {
		if err := readRecord(r, version, &records[i]); err != nil {
			return nil, fmt.Errorf("skeleton: bone %d: %w", i, err)
		}
	}
	return records, nil
}

func readRecord(r *binreader.Reader, version uint32, rec *Record) error {
	var err error
	if rec.Hash, err = r.U64(); err != nil {
		return err
	}
	if rec.Name, err = r.String(); err != nil {
		return err
	}
	if rec.Parent, err = r.I32(); err != nil {
		return err
	}
	if rec.Translation, err = r.Vec3(); err != nil {
		return err
	}
	if rec.Rotation, err = r.Vec4(); err != nil {
		return err
	}
	rec.Scale = [3]float32{1, 1, 1}
	if version >= 2 {
		if rec.Scale, err = r.Vec3(); err != nil {
			return err
		}
	}
	return nil
}
