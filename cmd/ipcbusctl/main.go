package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"time"

	"github.com/ipcbus/ipcbus-go/engine"
	"github.com/ipcbus/ipcbus-go/message"
	"github.com/ipcbus/ipcbus-go/telemetry"
	"github.com/ipcbus/ipcbus-go/transport"
	"github.com/ipcbus/ipcbus-go/wire"

	ipcbus "github.com/ipcbus/ipcbus-go"
)

func main() {
	if len(os.Args) < 2 {
		usage()
		os.Exit(1)
	}

	switch os.Args[1] {
	case "demo":
		runDemo()
	case "dial":
		dialSet := flag.NewFlagSet("dial", flag.ExitOnError)
		url := dialSet.String("amqp", os.Getenv("AMQP_URL"), "RabbitMQ connection URL")
		peerQueue := dialSet.String("peer-queue", "", "queue name to publish requests to")
		payload := dialSet.String("payload", "ping", "request payload")
		_ = dialSet.Parse(os.Args[2:])
		runDial(*url, *peerQueue, *payload)
	case "-h", "--help":
		usage()
	default:
		fmt.Fprintf(os.Stderr, "ipcbusctl: unknown command %q\n", os.Args[1])
		usage()
		os.Exit(1)
	}
}

func usage() {
	fmt.Println("ipcbusctl — exercise an ipcbus.Client from the command line")
	fmt.Println()
	fmt.Println("Commands:")
	fmt.Println("  demo                 Link two in-process clients and run one request/reply round trip")
	fmt.Println("  dial                 Send one request over a RabbitMQ connection")
	fmt.Println()
	fmt.Println("Environment:")
	fmt.Println("  AMQP_URL             Default for 'dial''s -amqp flag")
}

// runDemo wires two in-process Clients with no broker involved, exercises
// an Invoke round trip, and prints what each side saw. It registers a
// greeter object on the server but sends no broadcast.
func runDemo() {
	logger := telemetry.NewLogger(slog.Default())
	metrics := telemetry.NewMetrics(nil)
	_ = metrics.Register()

	server := ipcbus.NewClient("server", message.EndpointID(1), ipcbus.WithMetrics(metrics))
	client := ipcbus.NewClient("client", message.EndpointID(2))
	defer server.Close()
	defer client.Close()

	ipcbus.LinkClients(client, server)
	time.Sleep(5 * time.Millisecond)

	greeter := transport.NewObject("greeter", message.ObjectID(1))
	server.RegisterObject(greeter)

	server.SetRequestHandler(func(ref *engine.Ref, from engine.Session) {
		req := ref.Message()
		logger.Info("server: received request", "code", req.Code, "payload", string(req.Payload()))
		server.Reply(req, []byte("pong"))
	})
	time.Sleep(5 * time.Millisecond)

	dest, ok := client.Endpoint().PreferredPeer()
	if !ok {
		fmt.Fprintln(os.Stderr, "demo: client has no preferred peer after linking")
		os.Exit(1)
	}

	req := message.New(wire.TypeRequest, message.Code(1), []byte("ping"), 0)
	req.DestSession = dest.ID()

	reply, err := client.Invoke(context.Background(), req, time.Second)
	if err != nil {
		fmt.Fprintf(os.Stderr, "demo: invoke failed: %v\n", err)
		os.Exit(1)
	}
	fmt.Printf("client: got reply %q\n", reply.Payload())
}

// runDial connects to a real broker, declares this process's own reply
// queue, and sends a single fire-and-forget request to peerQueue.
func runDial(url, peerQueue, payload string) {
	if url == "" {
		fmt.Fprintln(os.Stderr, "dial: -amqp (or AMQP_URL) is required")
		os.Exit(1)
	}
	if peerQueue == "" {
		fmt.Fprintln(os.Stderr, "dial: -peer-queue is required")
		os.Exit(1)
	}

	c, err := ipcbus.DialAMQPClient(url, "ipcbusctl", message.EndpointID(1), peerQueue)
	if err != nil {
		fmt.Fprintf(os.Stderr, "dial: %v\n", err)
		os.Exit(1)
	}
	defer c.Close()

	req := message.New(wire.TypeRequest, message.Code(1), []byte(payload), 0)
	req.Flag |= message.FlagEndpoint
	req.DestEndpoint = message.EndpointID(1)
	if !c.Send(req) {
		fmt.Fprintln(os.Stderr, "dial: send was rejected (queue full?)")
		os.Exit(1)
	}
	fmt.Printf("dial: sent %q to %s\n", payload, peerQueue)
}
