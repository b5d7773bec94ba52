package email

import (
	"bufio"
	"context"
	"fmt"
	"net"
	"strings"
	"sync"
	"testing"
	"time"

	mail "github.com/go-mail/mail"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// smtpRecorder is a minimal SMTP server that accepts every command and
// records the session.
type smtpRecorder struct {
	mu       sync.Mutex
	commands []string
	data     string
}

func startSMTPRecorder(t *testing.T) (int, *smtpRecorder) {
	t.Helper()
	ln, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)
	t.Cleanup(func() { ln.Close() })

	rec := &smtpRecorder{}
	go func() {
		for {
			conn, err := ln.Accept()
			if err != nil {
				return
			}
			go rec.serve(conn)
		}
	}()
	return ln.Addr().(*net.TCPAddr).Port, rec
}

func (s *smtpRecorder) serve(conn net.Conn) {
	defer conn.Close()
	r := bufio.NewReader(conn)
	reply := func(line string) { fmt.Fprintf(conn, "%s\r\n", line) }

	reply("220 localhost ESMTP")
	for {
		line, err := r.ReadString('\n')
		if err != nil {
			return
		}
		line = strings.TrimRight(line, "\r\n")
		verb, _, _ := strings.Cut(line, " ")

		s.mu.Lock()
		s.commands = append(s.commands, line)
		s.mu.Unlock()

		switch strings.ToUpper(verb) {
		case "EHLO", "HELO":
			reply("250 localhost")
		case "DATA":
			reply("354 end data with <CR><LF>.<CR><LF>")
			var b strings.Builder
			for {
				l, err := r.ReadString('\n')
				if err != nil {
					return
				}
				if l == ".\r\n" {
					break
				}
				b.WriteString(l)
			}
			s.mu.Lock()
			s.data = b.String()
			s.mu.Unlock()
			reply("250 queued")
		case "QUIT":
			reply("221 bye")
			return
		default:
			reply("250 OK")
		}
	}
}

func (s *smtpRecorder) session() (string, string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return strings.Join(s.commands, "\n"), s.data
}

func newLocalSMTPSender(port int, tlsMode string) *SMTPSender {
	return NewSMTPSender(SMTPConfig{
		Service:  "custom",
		Host:     "127.0.0.1",
		Port:     port,
		User:     "mailer",
		Password: "secret",
		TLSMode:  tlsMode,
		From:     Address{Email: "contact@aaplamahesh.org", Name: "Aapla Mahesh"},
		Timeout:  5 * time.Second,
	})
}

func TestSMTPSenderSend(t *testing.T) {
	port, rec := startSMTPRecorder(t)
	s := newLocalSMTPSender(port, "none")

	id, err := s.Send(context.Background(), Message{
		To:       Address{Email: "admin@aaplamahesh.org"},
		ReplyTo:  &Address{Email: "asha@example.org", Name: "Asha"},
		Subject:  "Hostel fees",
		HTMLBody: "<p>Fees went up</p>",
		TextBody: "Fees went up",
	})
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(id, "<"))
	assert.True(t, strings.HasSuffix(id, "@aaplamahesh.org>"))

	commands, data := rec.session()
	assert.Contains(t, commands, "MAIL FROM:<contact@aaplamahesh.org>")
	assert.Contains(t, commands, "RCPT TO:<admin@aaplamahesh.org>")
	assert.Contains(t, commands, "QUIT")

	assert.Contains(t, data, "Subject: Hostel fees")
	assert.Contains(t, data, "Message-ID: "+id)
	assert.Contains(t, data, "asha@example.org")
	assert.Contains(t, data, "multipart/alternative")
	assert.Contains(t, data, "Fees went up")
}

func TestSMTPSenderVerify(t *testing.T) {
	port, rec := startSMTPRecorder(t)

	require.NoError(t, newLocalSMTPSender(port, "auto").Verify(context.Background()))
	commands, data := rec.session()
	assert.Contains(t, commands, "QUIT")
	assert.NotContains(t, commands, "MAIL FROM")
	assert.Empty(t, data)

	// The recorder never offers STARTTLS.
	assert.Error(t, newLocalSMTPSender(port, "starttls").Verify(context.Background()))
}

func TestSMTPSenderDialFailure(t *testing.T) {
	ln, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)
	port := ln.Addr().(*net.TCPAddr).Port
	ln.Close()

	s := newLocalSMTPSender(port, "none")
	err = s.Verify(context.Background())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "smtp dial")

	_, err = s.Send(context.Background(), Message{To: Address{Email: "a@b.co"}, Subject: "s", TextBody: "b"})
	assert.Error(t, err)
}

func TestSMTPSenderSendChecks(t *testing.T) {
	_, err := NewSMTPSender(SMTPConfig{Service: "gmail"}).Send(context.Background(), Message{To: Address{Email: "a@b.co"}})
	assert.ErrorIs(t, err, ErrNotConfigured)

	s := newLocalSMTPSender(1, "none")
	_, err = s.Send(context.Background(), Message{Subject: "s"})
	assert.ErrorIs(t, err, ErrNoRecipient)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err = s.Send(ctx, Message{To: Address{Email: "a@b.co"}})
	assert.ErrorIs(t, err, context.Canceled)
}

func TestSMTPPresets(t *testing.T) {
	s := NewSMTPSender(SMTPConfig{Service: "brevo", User: "u", Password: "p"})
	host, port := s.Host()
	assert.Equal(t, "smtp-relay.sendinblue.com", host)
	assert.Equal(t, 587, port)
	assert.True(t, s.Configured())
	assert.Equal(t, "u", s.from.Email)

	custom := NewSMTPSender(SMTPConfig{Service: "custom", Host: "mail.example.org", Port: 465, User: "u", Password: "p"})
	host, port = custom.Host()
	assert.Equal(t, "mail.example.org", host)
	assert.Equal(t, 465, port)
	assert.Equal(t, "ssl", custom.tlsMode)

	assert.False(t, NewSMTPSender(SMTPConfig{Service: "gmail"}).Configured())
}

func TestSMTPDialerTLSModes(t *testing.T) {
	tests := []struct {
		mode   string
		ssl    bool
		policy mail.StartTLSPolicy
	}{
		{"auto", false, mail.OpportunisticStartTLS},
		{"starttls", false, mail.MandatoryStartTLS},
		{"ssl", true, mail.OpportunisticStartTLS},
		{"none", false, mail.NoStartTLS},
	}

	for _, tt := range tests {
		t.Run(tt.mode, func(t *testing.T) {
			s := NewSMTPSender(SMTPConfig{Host: "mail.example.org", User: "u", Password: "p", TLSMode: tt.mode, InsecureSkipVerify: true})
			d := s.dialer(context.Background())

			assert.Equal(t, tt.ssl, d.SSL)
			if !tt.ssl {
				assert.Equal(t, tt.policy, d.StartTLSPolicy)
			}
			require.NotNil(t, d.TLSConfig)
			assert.Equal(t, "mail.example.org", d.TLSConfig.ServerName)
			assert.True(t, d.TLSConfig.InsecureSkipVerify)
		})
	}
}

func TestSMTPDialerTimeout(t *testing.T) {
	s := NewSMTPSender(SMTPConfig{Host: "mail.example.org", User: "u", Password: "p", Timeout: time.Minute})

	assert.Equal(t, time.Minute, s.dialer(context.Background()).Timeout)

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	d := s.dialer(ctx)
	assert.Greater(t, d.Timeout, time.Duration(0))
	assert.LessOrEqual(t, d.Timeout, 2*time.Second)

	assert.Equal(t, 15*time.Second, NewSMTPSender(SMTPConfig{Host: "h"}).dialer(context.Background()).Timeout)
}
