package pathstore

import (
	"bufio"
	"encoding/binary"
	"io"
	"math"
	"time"

	"github.com/pkg/errors"

	"github.com/treadline/pathfollow/trajectory"
)

// RecordSize is the encoded size of one sample: velocity and position as little-endian float32
// followed by the step duration in milliseconds as a little-endian uint16. Streams have no header.
const RecordSize = 10

// EncodeTrajectory writes one record per sample.
func EncodeTrajectory(w io.Writer, traj trajectory.Trajectory) error {
	bw := bufio.NewWriter(w)
	buf := make([]byte, RecordSize)
	for i, seg := range traj {
		ms := seg.Dt / time.Millisecond
		if seg.Dt%time.Millisecond != 0 || ms <= 0 || ms > math.MaxUint16 {
			return errors.Errorf("sample %d has step %v which is not a whole number of milliseconds up to %d",
				i, seg.Dt, math.MaxUint16)
		}
		binary.LittleEndian.PutUint32(buf[0:4], math.Float32bits(float32(seg.Velocity)))
		binary.LittleEndian.PutUint32(buf[4:8], math.Float32bits(float32(seg.Position)))
		binary.LittleEndian.PutUint16(buf[8:10], uint16(ms))
		if _, err := bw.Write(buf); err != nil {
			return errors.Wrapf(err, "error writing sample %d", i)
		}
	}
	return bw.Flush()
}

// decodeTrajectory decodes a whole stream. Time, acceleration and jerk are rebuilt from the
// velocities and step durations.
func decodeTrajectory(id, side string, data []byte) (trajectory.Trajectory, error) {
	if len(data) == 0 {
		return nil, newCorruptPathError(id, "%s stream is empty", side)
	}
	if len(data)%RecordSize != 0 {
		return nil, newCorruptPathError(id, "%s stream length %d is not a multiple of %d", side, len(data), RecordSize)
	}
	traj := make(trajectory.Trajectory, len(data)/RecordSize)
	for i := range traj {
		rec := data[i*RecordSize : (i+1)*RecordSize]
		velocity := math.Float32frombits(binary.LittleEndian.Uint32(rec[0:4]))
		position := math.Float32frombits(binary.LittleEndian.Uint32(rec[4:8]))
		ms := binary.LittleEndian.Uint16(rec[8:10])
		if !isFinite32(velocity) || !isFinite32(position) {
			return nil, newCorruptPathError(id, "%s sample %d is not finite", side, i)
		}
		if ms == 0 {
			return nil, newCorruptPathError(id, "%s sample %d has a zero step", side, i)
		}
		traj[i] = trajectory.Segment{
			Velocity: float64(velocity),
			Position: float64(position),
			Dt:       time.Duration(ms) * time.Millisecond,
		}
	}
	traj.RebuildDerivatives()
	return traj, nil
}

func isFinite32(v float32) bool {
	return !math.IsNaN(float64(v)) && !math.IsInf(float64(v), 0)
}

// DecodePair reads a left and right stream fully and decodes them in lockstep.
func DecodePair(id string, left, right io.Reader) (trajectory.Pair, error) {
	leftData, err := io.ReadAll(left)
	if err != nil {
		return trajectory.Pair{}, errors.Wrapf(err, "error reading left stream of path %q", id)
	}
	rightData, err := io.ReadAll(right)
	if err != nil {
		return trajectory.Pair{}, errors.Wrapf(err, "error reading right stream of path %q", id)
	}
	if len(leftData) != len(rightData) {
		return trajectory.Pair{}, newCorruptPathError(id, "left stream has %d bytes but right stream has %d",
			len(leftData), len(rightData))
	}

	pair := trajectory.Pair{}
	if pair.Left, err = decodeTrajectory(id, "left", leftData); err != nil {
		return trajectory.Pair{}, err
	}
	if pair.Right, err = decodeTrajectory(id, "right", rightData); err != nil {
		return trajectory.Pair{}, err
	}
	if err := pair.Validate(); err != nil {
		return trajectory.Pair{}, newCorruptPathError(id, "%v", err)
	}
	return pair, nil
}
