package phtrees

const (
	OptimalVolumeTarget = "optimal-volume"
	StableVolumeTarget  = "stable-volume"
)

// VolumeSelector turns a death index into the volume a query reports.
type VolumeSelector interface {
	Resolve(death int) (VolumeLike, error)
	// QueryTargetName is written as "query-target".
	QueryTargetName() string
	Forest() *Forest
}

// OptimalVolumeSelector resolves to the forest node itself.
type OptimalVolumeSelector struct {
	forest *Forest
}

func GetOptimalVolume(f *Forest) *OptimalVolumeSelector {
	return &OptimalVolumeSelector{forest: f}
}

func (s *OptimalVolumeSelector) Resolve(death int) (VolumeLike, error) {
	n, err := s.forest.Node(death)
	if err != nil {
		return nil, err
	}
	return n, nil
}

func (s *OptimalVolumeSelector) QueryTargetName() string { return OptimalVolumeTarget }
func (s *OptimalVolumeSelector) Forest() *Forest         { return s.forest }

// StableVolumeSelector resolves to the node's stable volume for Epsilon.
type StableVolumeSelector struct {
	forest  *Forest
	Epsilon float64
}

func GetStableVolume(f *Forest, epsilon float64) *StableVolumeSelector {
	return &StableVolumeSelector{forest: f, Epsilon: epsilon}
}

func (s *StableVolumeSelector) Resolve(death int) (VolumeLike, error) {
	n, err := s.forest.Node(death)
	if err != nil {
		return nil, err
	}
	return n.StableVolume(s.Epsilon), nil
}

func (s *StableVolumeSelector) QueryTargetName() string { return StableVolumeTarget }
func (s *StableVolumeSelector) Forest() *Forest         { return s.forest }
