package main

import (
	"context"
	"encoding/json"
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"strings"

	"github.com/aws/aws-sdk-go/aws"
	"github.com/aws/aws-sdk-go/aws/session"
	"github.com/aws/aws-sdk-go/service/s3"
	"github.com/jrhy/phtrees"
	"github.com/jrhy/phtrees/persist/file"
	s3persist "github.com/jrhy/phtrees/persist/s3"
	"github.com/jrhy/phtrees/simplex"
	"gopkg.in/yaml.v3"
)

// inputFile is the JSON or YAML description of one degree of a diagram.
// Each pair is [birth, death] for a root or [birth, death, parent-death];
// a null parent also marks a root.
type inputFile struct {
	Degree    int             `json:"degree" yaml:"degree"`
	Dimension int             `json:"dimension" yaml:"dimension"`
	Pairs     [][]*int        `json:"pairs" yaml:"pairs"`
	Levels    map[int]float64 `json:"levels" yaml:"levels"`
	Points    [][]float64     `json:"points" yaml:"points"`
	Labels    []string        `json:"labels" yaml:"labels"`
	Cells     map[int][]int   `json:"cells" yaml:"cells"`
}

func (in *inputFile) snapshot() (*phtrees.Snapshot, error) {
	s := &phtrees.Snapshot{
		Degree:    in.Degree,
		Dimension: in.Dimension,
		Levels:    in.Levels,
		Triples:   make([]phtrees.Triple, 0, len(in.Pairs)),
	}
	if s.Levels == nil {
		s.Levels = map[int]float64{}
	}
	for i, p := range in.Pairs {
		if len(p) < 2 || len(p) > 3 || p[0] == nil || p[1] == nil {
			return nil, fmt.Errorf("pair %d: want [birth, death] or [birth, death, parent]: %w", i, phtrees.ErrConfiguration)
		}
		t := phtrees.Triple{BirthIndex: *p[0], DeathIndex: *p[1], ParentDeath: phtrees.Inf}
		if len(p) == 3 && p[2] != nil {
			t.ParentDeath = *p[2]
		}
		s.Triples = append(s.Triples, t)
	}
	return s, nil
}

// complex returns the cell complex of the input, or nil if it has no cells.
func (in *inputFile) complex() *simplex.Complex {
	if len(in.Cells) == 0 {
		return nil
	}
	return &simplex.Complex{Points: in.Points, Labels: in.Labels, Cells: in.Cells}
}

func readInputFile(path string) (*inputFile, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read input: %w", err)
	}
	var in inputFile
	switch strings.ToLower(filepath.Ext(path)) {
	case ".json":
		err = json.Unmarshal(b, &in)
	case ".yaml", ".yml":
		err = yaml.Unmarshal(b, &in)
	default:
		return nil, fmt.Errorf("input %s: unknown extension: %w", path, phtrees.ErrConfiguration)
	}
	if err != nil {
		return nil, fmt.Errorf("parse %s: %v: %w", path, err, phtrees.ErrConfiguration)
	}
	return &in, nil
}

func isStoreRef(ref string) bool {
	return strings.HasPrefix(ref, "file:") || strings.HasPrefix(ref, "s3://")
}

// loadForest builds a forest from an input file or a stored snapshot.
// Snapshots carry no geometry, so their forests have no resolvers.
func loadForest(ctx context.Context, ref string, cfg Config) (*phtrees.Forest, error) {
	fc := &phtrees.ForestConfig{VolumeCache: phtrees.NewVolumeCache(cfg.CacheSize)}
	var s *phtrees.Snapshot
	if isStoreRef(ref) {
		i := strings.LastIndex(ref, "/")
		if i < 0 || i == len(ref)-1 || strings.HasSuffix(ref[:i+1], "://") {
			return nil, fmt.Errorf("snapshot reference %s has no name: %w", ref, phtrees.ErrConfiguration)
		}
		p, err := openStore(ref[:i], cfg)
		if err != nil {
			return nil, err
		}
		s, err = phtrees.LoadSnapshot(ctx, p, ref[i+1:])
		if err != nil {
			return nil, err
		}
	} else {
		in, err := readInputFile(ref)
		if err != nil {
			return nil, err
		}
		s, err = in.snapshot()
		if err != nil {
			return nil, err
		}
		if c := in.complex(); c != nil {
			if len(c.Points) > 0 {
				fc.Coordinates = c.Coordinates()
			}
			if len(c.Labels) > 0 {
				fc.Symbols = c.Symbols()
			}
		}
	}
	return s.Build(fc)
}

// openStore opens a snapshot location: file:DIR or s3://BUCKET[/PREFIX].
func openStore(loc string, cfg Config) (phtrees.Persist, error) {
	if dir, ok := strings.CutPrefix(loc, "file:"); ok {
		if dir == "" {
			return nil, fmt.Errorf("store %s: empty directory: %w", loc, phtrees.ErrConfiguration)
		}
		p, err := file.NewPersistForPath(dir)
		if err != nil {
			return nil, fmt.Errorf("store %s: %w", loc, err)
		}
		return p, nil
	}
	u, err := url.Parse(loc)
	if err != nil || u.Scheme != "s3" || u.Host == "" {
		return nil, fmt.Errorf("store %s: want file:DIR or s3://BUCKET/PREFIX: %w", loc, phtrees.ErrConfiguration)
	}
	prefix := strings.Trim(u.Path, "/")
	if prefix != "" {
		prefix += "/"
	}
	awsConfig := &aws.Config{Region: aws.String(cfg.S3Region)}
	if cfg.S3Endpoint != "" {
		awsConfig.Endpoint = aws.String(cfg.S3Endpoint)
		awsConfig.S3ForcePathStyle = aws.Bool(true)
	}
	sess, err := session.NewSession(awsConfig)
	if err != nil {
		return nil, fmt.Errorf("s3 session: %w", err)
	}
	return s3persist.NewPersist(s3.New(sess), u.Host, prefix), nil
}
