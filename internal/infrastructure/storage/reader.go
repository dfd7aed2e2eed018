package storage

import (
	"bufio"
	"encoding/binary"
	"errors"
	"fmt"
	"io"
	"os"

	"autoref-server/internal/domain"

	"github.com/vmihailenco/msgpack/v5"
)

func (s *ReplayService) Load(path string) (*domain.ReplaySession, error) {
	return LoadFile(path)
}

// LoadFile читает запись матча. Оборванный последний кадр (судья упал
// посреди записи) отбрасывается.
func LoadFile(path string) (*domain.ReplaySession, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	return readBinary(bufio.NewReader(f))
}

func readBinary(r io.Reader) (*domain.ReplaySession, error) {
	// 1. Заголовок целиком
	var header ReplayFileHeader
	if err := binary.Read(r, binary.LittleEndian, &header); err != nil {
		return nil, fmt.Errorf("failed to read header: %w", err)
	}

	if string(header.Magic[:]) != MagicHeader {
		return nil, fmt.Errorf("invalid magic")
	}
	if header.Version != Version1 {
		return nil, fmt.Errorf("unsupported version: %d (expected %d)", header.Version, Version1)
	}

	session := &domain.ReplaySession{
		Seed:      header.Seed,
		Timestamp: header.Timestamp,
	}

	// 2. ID матча и параметры
	idBuf := make([]byte, header.IDLen)
	if _, err := io.ReadFull(r, idBuf); err != nil {
		return nil, fmt.Errorf("failed to read match id: %w", err)
	}
	session.MatchID = string(idBuf)

	if header.ParamsLen > 0 {
		session.Params = make([]byte, header.ParamsLen)
		if _, err := io.ReadFull(r, session.Params); err != nil {
			return nil, fmt.Errorf("failed to read parameters: %w", err)
		}
	}

	// 3. Кадры до конца файла
	for {
		var frameLen uint32
		if err := binary.Read(r, binary.LittleEndian, &frameLen); err != nil {
			if errors.Is(err, io.EOF) || errors.Is(err, io.ErrUnexpectedEOF) {
				break
			}
			return nil, err
		}
		if frameLen > maxFrameLen {
			return nil, fmt.Errorf("frame %d too long: %d", len(session.Frames), frameLen)
		}
		body := make([]byte, frameLen)
		if _, err := io.ReadFull(r, body); err != nil {
			if errors.Is(err, io.ErrUnexpectedEOF) || errors.Is(err, io.EOF) {
				break
			}
			return nil, err
		}

		var frame domain.ReplayFrame
		if err := msgpack.Unmarshal(body, &frame); err != nil {
			return nil, fmt.Errorf("decode frame %d: %w", len(session.Frames), err)
		}
		session.Frames = append(session.Frames, frame)
	}

	return session, nil
}
