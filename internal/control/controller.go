package control

import (
	"log"
	"strings"

	paho "github.com/eclipse/paho.mqtt.golang"

	"github.com/framewire/broker/internal/broker"
	"github.com/framewire/broker/internal/mqtt"
)

// closeTopicPrefix is the MQTT topic under which operators request a
// forced stream eviction; the stream id is the final topic segment, e.g.
// "broker/admin/close/alpha".
const closeTopicPrefix = "broker/admin/close/"

// Controller wires an MQTT subscription to Registry.Close, giving
// operators a forced-eviction path that sits entirely outside the
// broadcast core, per spec.md's Open Question resolution.
type Controller struct {
	client   *mqtt.Client
	registry *broker.Registry
}

// NewController builds a Controller over an already-constructed MQTT
// client and the broker's Registry. It does not connect; call Start.
func NewController(client *mqtt.Client, registry *broker.Registry) *Controller {
	return &Controller{client: client, registry: registry}
}

// Start connects to the configured MQTT broker and subscribes to the
// forced-eviction topic. Logs and returns false on failure; the broker
// continues to run without the admin control plane in that case — MQTT
// connectivity is not required for ingest or subscribe to function.
func (c *Controller) Start() bool {
	return c.client.StartWithRetry(closeTopicPrefix+"+", c.handleClose)
}

func (c *Controller) handleClose(_ paho.Client, msg paho.Message) {
	topic := msg.Topic()
	id := strings.TrimPrefix(topic, closeTopicPrefix)
	if id == "" || id == topic {
		log.Printf("control: ignoring malformed close topic %q", topic)
		return
	}
	if err := broker.ValidateStreamId(id); err != nil {
		log.Printf("control: ignoring close request for invalid stream id %q", id)
		return
	}

	log.Printf("control: forcing close of stream %q", id)
	c.registry.Close(broker.StreamId(id))
}
