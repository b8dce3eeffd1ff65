package multiplayer

import (
	"fmt"
	"math"

	"google.golang.org/protobuf/encoding/protowire"

	"github.com/vovakirdan/hockey-pong/internal/core"
	"github.com/vovakirdan/hockey-pong/internal/hockey"
)

// FrameKind identifies the purpose of a frame.
type FrameKind uint8

const (
	FrameJoin    FrameKind = iota + 1 // client -> relay: find or open a lobby
	FrameWaiting                      // relay -> client: lobby open, code attached
	FrameJoined                       // relay -> client: opponent found, actor attached
	FrameInput                        // actor 2 -> actor 1, via relay
	FrameState                        // actor 1 -> actor 2, via relay
	FrameLeave                        // client -> relay
	FrameLeft                         // relay -> client: leave acknowledged
	FrameError                        // relay -> client
	FrameEnded                        // relay -> client: match closed
)

func (k FrameKind) String() string {
	switch k {
	case FrameJoin:
		return "join"
	case FrameWaiting:
		return "waiting"
	case FrameJoined:
		return "joined"
	case FrameInput:
		return "input"
	case FrameState:
		return "state"
	case FrameLeave:
		return "leave"
	case FrameLeft:
		return "left"
	case FrameError:
		return "error"
	case FrameEnded:
		return "ended"
	default:
		return fmt.Sprintf("kind(%d)", uint8(k))
	}
}

// Frame is the unit exchanged between clients and the relay.
type Frame struct {
	Kind    FrameKind
	Seq     uint64
	Actor   core.PlayerID
	Code    string
	Message string
	Name    string
	Input   *InputPayload
	State   *hockey.State
}

// Frame field numbers.
const (
	fieldKind    protowire.Number = 1
	fieldSeq     protowire.Number = 2
	fieldActor   protowire.Number = 3
	fieldCode    protowire.Number = 4
	fieldMessage protowire.Number = 5
	fieldInput   protowire.Number = 6
	fieldState   protowire.Number = 7
	fieldName    protowire.Number = 8
)

// InputPayload field numbers.
const (
	inputPaddleY   protowire.Number = 1
	inputTimestamp protowire.Number = 2
)

// hockey.State field numbers.
const (
	statePuckX       protowire.Number = 1
	statePuckY       protowire.Number = 2
	statePuckDX      protowire.Number = 3
	statePuckDY      protowire.Number = 4
	statePaddle1Y    protowire.Number = 5
	statePaddle2Y    protowire.Number = 6
	stateScore1      protowire.Number = 7
	stateScore2      protowire.Number = 8
	stateRunning     protowire.Number = 9
	stateWinner      protowire.Number = 10
	stateCelebrating protowire.Number = 11
	stateSpeed       protowire.Number = 12
	stateMode        protowire.Number = 13
	stateTick        protowire.Number = 14
	statePaddle1X    protowire.Number = 15
	statePaddle2X    protowire.Number = 16
)

// EncodeFrame serialises f in protobuf wire format.
func EncodeFrame(f Frame) []byte {
	b := make([]byte, 0, 160)
	b = appendVarint(b, fieldKind, uint64(f.Kind))
	if f.Seq != 0 {
		b = appendVarint(b, fieldSeq, f.Seq)
	}
	if f.Actor != core.PlayerNone {
		b = appendVarint(b, fieldActor, uint64(f.Actor))
	}
	b = appendString(b, fieldCode, f.Code)
	b = appendString(b, fieldMessage, f.Message)
	if f.Input != nil {
		b = protowire.AppendTag(b, fieldInput, protowire.BytesType)
		b = protowire.AppendBytes(b, encodeInput(*f.Input))
	}
	if f.State != nil {
		b = protowire.AppendTag(b, fieldState, protowire.BytesType)
		b = protowire.AppendBytes(b, encodeState(*f.State))
	}
	b = appendString(b, fieldName, f.Name)
	return b
}

func encodeInput(p InputPayload) []byte {
	var b []byte
	b = appendFloat(b, inputPaddleY, p.PaddleY)
	b = appendVarint(b, inputTimestamp, protowire.EncodeZigZag(p.Timestamp))
	return b
}

func encodeState(s hockey.State) []byte {
	b := make([]byte, 0, 128)
	b = appendFloat(b, statePuckX, s.Puck.X)
	b = appendFloat(b, statePuckY, s.Puck.Y)
	b = appendFloat(b, statePuckDX, s.Puck.DX)
	b = appendFloat(b, statePuckDY, s.Puck.DY)
	b = appendFloat(b, statePaddle1X, s.Paddle1.X)
	b = appendFloat(b, statePaddle1Y, s.Paddle1.Y)
	b = appendFloat(b, statePaddle2X, s.Paddle2.X)
	b = appendFloat(b, statePaddle2Y, s.Paddle2.Y)
	b = appendVarint(b, stateScore1, uint64(s.Score.Player1))
	b = appendVarint(b, stateScore2, uint64(s.Score.Player2))
	b = appendVarint(b, stateRunning, protowire.EncodeBool(s.Running))
	b = appendVarint(b, stateWinner, uint64(s.Winner))
	b = appendVarint(b, stateCelebrating, protowire.EncodeBool(s.Celebrating))
	b = appendFloat(b, stateSpeed, s.SpeedMultiplier)
	b = appendVarint(b, stateMode, uint64(s.Mode))
	b = appendVarint(b, stateTick, s.Tick)
	return b
}

func appendVarint(b []byte, num protowire.Number, v uint64) []byte {
	b = protowire.AppendTag(b, num, protowire.VarintType)
	return protowire.AppendVarint(b, v)
}

func appendFloat(b []byte, num protowire.Number, v float64) []byte {
	b = protowire.AppendTag(b, num, protowire.Fixed64Type)
	return protowire.AppendFixed64(b, math.Float64bits(v))
}

func appendString(b []byte, num protowire.Number, s string) []byte {
	if s == "" {
		return b
	}
	b = protowire.AppendTag(b, num, protowire.BytesType)
	return protowire.AppendString(b, s)
}

// DecodeFrame parses a frame. Unknown fields are skipped. Truncated data,
// an unknown kind or non-finite numbers yield an error wrapping ErrBadFrame.
func DecodeFrame(data []byte) (Frame, error) {
	var f Frame
	err := walk(data, func(num protowire.Number, typ protowire.Type, b []byte) (int, error) {
		switch {
		case num == fieldKind && typ == protowire.VarintType:
			v, n := protowire.ConsumeVarint(b)
			f.Kind = FrameKind(v)
			return n, nil
		case num == fieldSeq && typ == protowire.VarintType:
			v, n := protowire.ConsumeVarint(b)
			f.Seq = v
			return n, nil
		case num == fieldActor && typ == protowire.VarintType:
			v, n := protowire.ConsumeVarint(b)
			f.Actor = core.PlayerID(v)
			return n, nil
		case num == fieldCode && typ == protowire.BytesType:
			v, n := protowire.ConsumeString(b)
			f.Code = v
			return n, nil
		case num == fieldMessage && typ == protowire.BytesType:
			v, n := protowire.ConsumeString(b)
			f.Message = v
			return n, nil
		case num == fieldName && typ == protowire.BytesType:
			v, n := protowire.ConsumeString(b)
			f.Name = v
			return n, nil
		case num == fieldInput && typ == protowire.BytesType:
			v, n := protowire.ConsumeBytes(b)
			if n < 0 {
				return n, nil
			}
			p, err := decodeInput(v)
			if err != nil {
				return 0, err
			}
			f.Input = &p
			return n, nil
		case num == fieldState && typ == protowire.BytesType:
			v, n := protowire.ConsumeBytes(b)
			if n < 0 {
				return n, nil
			}
			s, err := decodeState(v)
			if err != nil {
				return 0, err
			}
			f.State = &s
			return n, nil
		}
		return protowire.ConsumeFieldValue(num, typ, b), nil
	})
	if err != nil {
		return Frame{}, err
	}
	if f.Kind < FrameJoin || f.Kind > FrameEnded {
		return Frame{}, fmt.Errorf("%w: unknown kind %d", ErrBadFrame, f.Kind)
	}
	if f.Actor > core.Player2 || f.Actor < core.PlayerNone {
		return Frame{}, fmt.Errorf("%w: actor %d", ErrBadFrame, f.Actor)
	}
	return f, nil
}

func decodeInput(data []byte) (InputPayload, error) {
	var p InputPayload
	err := walk(data, func(num protowire.Number, typ protowire.Type, b []byte) (int, error) {
		switch {
		case num == inputPaddleY && typ == protowire.Fixed64Type:
			return consumeFloat(b, &p.PaddleY)
		case num == inputTimestamp && typ == protowire.VarintType:
			v, n := protowire.ConsumeVarint(b)
			p.Timestamp = protowire.DecodeZigZag(v)
			return n, nil
		}
		return protowire.ConsumeFieldValue(num, typ, b), nil
	})
	return p, err
}

func decodeState(data []byte) (hockey.State, error) {
	var s hockey.State
	err := walk(data, func(num protowire.Number, typ protowire.Type, b []byte) (int, error) {
		if typ == protowire.Fixed64Type {
			switch num {
			case statePuckX:
				return consumeFloat(b, &s.Puck.X)
			case statePuckY:
				return consumeFloat(b, &s.Puck.Y)
			case statePuckDX:
				return consumeFloat(b, &s.Puck.DX)
			case statePuckDY:
				return consumeFloat(b, &s.Puck.DY)
			case statePaddle1X:
				return consumeFloat(b, &s.Paddle1.X)
			case statePaddle1Y:
				return consumeFloat(b, &s.Paddle1.Y)
			case statePaddle2X:
				return consumeFloat(b, &s.Paddle2.X)
			case statePaddle2Y:
				return consumeFloat(b, &s.Paddle2.Y)
			case stateSpeed:
				return consumeFloat(b, &s.SpeedMultiplier)
			}
		}
		if typ == protowire.VarintType {
			v, n := protowire.ConsumeVarint(b)
			switch num {
			case stateScore1:
				s.Score.Player1 = int(v) //nolint:gosec // scores are small
			case stateScore2:
				s.Score.Player2 = int(v) //nolint:gosec // scores are small
			case stateRunning:
				s.Running = protowire.DecodeBool(v)
			case stateWinner:
				s.Winner = core.PlayerID(v) //nolint:gosec // validated below
			case stateCelebrating:
				s.Celebrating = protowire.DecodeBool(v)
			case stateMode:
				s.Mode = hockey.Mode(v) //nolint:gosec // validated below
			case stateTick:
				s.Tick = v
			}
			return n, nil
		}
		return protowire.ConsumeFieldValue(num, typ, b), nil
	})
	if err != nil {
		return hockey.State{}, err
	}
	if s.Winner < core.PlayerNone || s.Winner > core.Player2 {
		return hockey.State{}, fmt.Errorf("%w: winner %d", ErrBadFrame, s.Winner)
	}
	if s.Score.Player1 < 0 || s.Score.Player2 < 0 {
		return hockey.State{}, fmt.Errorf("%w: negative score", ErrBadFrame)
	}
	if s.Celebrating != (s.Winner != core.PlayerNone) || (s.Running && s.Winner != core.PlayerNone) {
		return hockey.State{}, fmt.Errorf("%w: winner %d with running=%v celebrating=%v", ErrBadFrame, s.Winner, s.Running, s.Celebrating)
	}
	switch s.Mode {
	case hockey.ModeSinglePlayer, hockey.ModeTwoPlayer, hockey.ModeOnline:
	default:
		return hockey.State{}, fmt.Errorf("%w: mode %d", ErrBadFrame, s.Mode)
	}
	if s.SpeedMultiplier <= 0 {
		return hockey.State{}, fmt.Errorf("%w: speed multiplier %v", ErrBadFrame, s.SpeedMultiplier)
	}
	return s, nil
}

// walk visits every field of a message. fn returns how many bytes of the
// value it consumed, or a negative protowire error code.
func walk(data []byte, fn func(num protowire.Number, typ protowire.Type, b []byte) (int, error)) error {
	for len(data) > 0 {
		num, typ, n := protowire.ConsumeTag(data)
		if n < 0 {
			return fmt.Errorf("%w: %v", ErrBadFrame, protowire.ParseError(n))
		}
		data = data[n:]

		n, err := fn(num, typ, data)
		if err != nil {
			return err
		}
		if n < 0 {
			return fmt.Errorf("%w: field %d: %v", ErrBadFrame, num, protowire.ParseError(n))
		}
		data = data[n:]
	}
	return nil
}

func consumeFloat(b []byte, dst *float64) (int, error) {
	v, n := protowire.ConsumeFixed64(b)
	if n < 0 {
		return n, nil
	}
	f := math.Float64frombits(v)
	if math.IsNaN(f) || math.IsInf(f, 0) {
		return 0, fmt.Errorf("%w: non-finite number", ErrBadFrame)
	}
	*dst = f
	return n, nil
}
