package link

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"log"
	"strings"
	"sync"

	"go.bug.st/serial"
)

const (
	// DefaultBaudRate is the USB CDC rate used by the firmware.
	DefaultBaudRate = 115200
	// DefaultBufferSize is the default size for the messages channel buffer.
	DefaultBufferSize = 100
)

// Port represents a serial port.
type Port struct {
	Name        string
	Description string
}

// Ports returns a list of available serial ports.
func Ports() ([]Port, error) {
	ports, err := serial.GetPortsList()
	if err != nil {
		return nil, fmt.Errorf("failed to list serial ports: %w", err)
	}

	result := make([]Port, 0, len(ports))
	for _, name := range ports {
		result = append(result, Port{Name: name, Description: name})
	}
	return result, nil
}

// Serial reads report lines from a handheld connected over USB serial.
type Serial struct {
	port     string
	baudRate int
	bufSize  int

	conn      io.ReadCloser
	messages  chan Message
	mu        sync.RWMutex
	ctx       context.Context
	cancel    context.CancelFunc
	connected bool
	done      chan struct{}
}

// NewSerial creates a reader for the given port. Zero baud rate and buffer
// size select the defaults.
func NewSerial(port string, baudRate int, bufSize int) *Serial {
	if baudRate == 0 {
		baudRate = DefaultBaudRate
	}
	if bufSize == 0 {
		bufSize = DefaultBufferSize
	}

	ctx, cancel := context.WithCancel(context.Background())

	return &Serial{
		port:     port,
		baudRate: baudRate,
		bufSize:  bufSize,
		messages: make(chan Message, bufSize),
		ctx:      ctx,
		cancel:   cancel,
	}
}

// Connect opens the serial port and starts reading messages.
func (s *Serial) Connect() error {
	port, err := serial.Open(s.port, &serial.Mode{BaudRate: s.baudRate})
	if err != nil {
		return fmt.Errorf("failed to open serial port %s: %w", s.port, err)
	}
	if err := s.attach(port); err != nil {
		port.Close()
		return err
	}
	return nil
}

// attach starts reading from an already open stream.
func (s *Serial) attach(conn io.ReadCloser) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.connected {
		return fmt.Errorf("already connected")
	}
	if s.done != nil {
		return fmt.Errorf("closed")
	}

	s.conn = conn
	s.connected = true
	s.done = make(chan struct{})

	go s.readMessages(conn, s.done)

	return nil
}

// Close closes the connection and the messages channel.
func (s *Serial) Close() error {
	s.mu.Lock()
	if !s.connected {
		s.mu.Unlock()
		return nil
	}
	s.cancel()
	if err := s.conn.Close(); err != nil {
		log.Printf("Error closing serial port: %v", err)
	}
	s.conn = nil
	s.connected = false
	done := s.done
	s.mu.Unlock()

	// The reader exits on the closed stream before the channel is closed.
	<-done
	close(s.messages)

	return nil
}

// Messages returns the channel of received messages.
func (s *Serial) Messages() <-chan Message {
	return s.messages
}

// IsConnected returns whether the port is open.
func (s *Serial) IsConnected() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.connected
}

func (s *Serial) readMessages(r io.Reader, done chan struct{}) {
	defer close(done)
	defer func() {
		if r := recover(); r != nil {
			log.Printf("Panic in readMessages: %v", r)
		}
	}()

	scanner := bufio.NewScanner(r)
	for scanner.Scan() {
		if s.ctx.Err() != nil {
			return
		}

		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}
		if comment, ok := strings.CutPrefix(line, strings.TrimSpace(CommentPrefix)); ok {
			log.Printf("device:%s", comment)
			continue
		}

		msg, err := Parse(line)
		if err != nil {
			log.Printf("Failed to parse line '%s': %v", line, err)
			continue
		}

		select {
		case s.messages <- msg:
		case <-s.ctx.Done():
			return
		default:
			log.Printf("Messages channel full, dropping message")
		}
	}
	if err := scanner.Err(); err != nil && s.ctx.Err() == nil {
		log.Printf("Error reading from serial port: %v", err)
	}
}
